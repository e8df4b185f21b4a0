package users

import (
	"strings"
	"sync"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// CityCount is one entry of a city ranking.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// User is a registered account together with its city lookup counters.
// Nickname, role and home city never change after creation.
type User struct {
	nickname string
	role     Role
	homeCity string
	verifier string
	hasher   Hasher

	mu     sync.RWMutex
	cities *counter
}

// NewUser builds a user with no recorded lookups. Input is not validated
// here; Store.AddUser does that.
func NewUser(nickname, homeCity, password string, role Role, hasher Hasher) *User {
	if role == "" {
		role = RoleUser
	}
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &User{
		nickname: nickname,
		role:     role,
		homeCity: homeCity,
		verifier: hasher.Hash(password),
		hasher:   hasher,
		cities:   newCounter(),
	}
}

func (u *User) Nickname() string { return u.nickname }
func (u *User) Role() Role { return u.role }
func (u *User) HomeCity() string { return u.homeCity }
func (u *User) IsAdmin() bool { return u.role == RoleAdmin }

// CheckPassword reports whether password matches the stored verifier.
func (u *User) CheckPassword(password string) bool {
	return u.hasher.Verify(password, u.verifier)
}

// AddCity records one lookup of city. Blank names are ignored.
func (u *User) AddCity(city string) {
	city = strings.Clone(strings.TrimSpace(city))
	if city == "" {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.cities.add(city, 1)
}

// TotalRequests returns the number of recorded lookups.
func (u *User) TotalRequests() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	total := 0
	for _, n := range u.cities.counts {
		total += n
	}
	return total
}

// UniqueCities returns the number of distinct cities looked up.
func (u *User) UniqueCities() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.cities.counts)
}

// TopCities returns up to n cities ordered by count descending. Cities with
// equal counts keep the order in which they were first looked up.
func (u *User) TopCities(n int) []CityCount {
	if n <= 0 {
		return []CityCount{}
	}

	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.cities.mostCommon(n)
}

// CityCounts returns a copy of the per-city counters.
func (u *User) CityCounts() map[string]int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make(map[string]int, len(u.cities.counts))
	for city, n := range u.cities.counts {
		out[city] = n
	}
	return out
}

// ClearCities drops all recorded lookups.
func (u *User) ClearCities() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.cities = newCounter()
}

// statsRow builds the report row and adds the counters to byCity, in
// first-lookup order, under a single read lock so both agree.
func (u *User) statsRow(byCity *counter, top int) UserStats {
	u.mu.RLock()
	defer u.mu.RUnlock()

	row := UserStats{
		Nickname:     u.nickname,
		HomeCity:     u.homeCity,
		UniqueCities: len(u.cities.counts),
		TopCities:    u.cities.mostCommon(top),
	}
	for _, city := range u.cities.order {
		n := u.cities.counts[city]
		row.TotalRequests += n
		byCity.add(city, n)
	}
	return row
}
