package users

import "sort"

const (
	globalTopCities  = 10
	perUserTopCities = 3
)

// UserStats is the per-user row of the admin report.
type UserStats struct {
	Nickname      string      `json:"nickname"`
	HomeCity      string      `json:"homeCity"`
	TotalRequests int         `json:"totalRequests"`
	UniqueCities  int         `json:"uniqueCities"`
	TopCities     []CityCount `json:"topCities"`
}

// HomeCityCount is one entry of the home city distribution.
type HomeCityCount struct {
	HomeCity string `json:"homeCity"`
	Users    int    `json:"users"`
}

// StatsReport aggregates usage across all registered users.
type StatsReport struct {
	TotalRequestsAllUsers  int             `json:"totalRequestsAllUsers"`
	TopCitiesAllUsers      []CityCount     `json:"topCitiesAllUsers"`
	HomeCitiesDistribution []HomeCityCount `json:"homeCitiesDistribution"`
	PerUser                []UserStats     `json:"perUser"`
}

// AllStats computes the admin usage report. Users are visited in
// registration order, which decides ties in the city rankings.
func (s *Store) AllStats(actor *User) (StatsReport, error) {
	if actor == nil || !actor.IsAdmin() {
		return StatsReport{}, ErrAccessDenied
	}

	var (
		byCity = newCounter()
		homes  = newCounter()
		total  int
	)

	all := s.snapshot()
	perUser := make([]UserStats, 0, len(all))

	for _, u := range all {
		row := u.statsRow(byCity, perUserTopCities)
		total += row.TotalRequests
		homes.add(row.HomeCity, 1)
		perUser = append(perUser, row)
	}

	sort.SliceStable(perUser, func(i, j int) bool {
		return perUser[i].TotalRequests > perUser[j].TotalRequests
	})

	homeRank := homes.mostCommon(-1)
	distribution := make([]HomeCityCount, 0, len(homeRank))
	for _, h := range homeRank {
		distribution = append(distribution, HomeCityCount{HomeCity: h.City, Users: h.Count})
	}

	return StatsReport{
		TotalRequestsAllUsers:  total,
		TopCitiesAllUsers:      byCity.mostCommon(globalTopCities),
		HomeCitiesDistribution: distribution,
		PerUser:                perUser,
	}, nil
}
