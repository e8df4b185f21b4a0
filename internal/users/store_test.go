package users

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddAndGetUser(t *testing.T) {
	s := NewStore(nil)

	u, err := s.AddUser("  Alice ", " Paris ", "pw1", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Nickname())
	assert.Equal(t, "Paris", u.HomeCity())

	got, ok := s.GetUser(" ALICE")
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.True(t, got.CheckPassword("pw1"))
	assert.False(t, got.CheckPassword("pw2"))

	_, ok = s.GetUser("bob")
	assert.False(t, ok)
}

func TestStoreAddUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		homeCity string
		password string
	}{
		{"blank nickname", "   ", "Paris", "pw"},
		{"blank home city", "alice", " ", "pw"},
		{"empty password", "alice", "Paris", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil)
			_, err := s.AddUser(tt.nickname, tt.homeCity, tt.password, RoleUser)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, s.Len())
		})
	}
}

func TestStoreAddUserBcryptPasswordLimit(t *testing.T) {
	s := NewStore(BcryptHasher{Cost: 4})

	_, err := s.AddUser("Alice", "Paris", strings.Repeat("x", 73), RoleUser)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, s.Len())

	pw := strings.Repeat("x", 72)
	u, err := s.AddUser("Alice", "Paris", pw, RoleUser)
	require.NoError(t, err)
	assert.True(t, u.CheckPassword(pw))

	got, err := s.Authenticate("alice", pw)
	require.NoError(t, err)
	assert.Same(t, u, got)
}

func TestStoreAddUserWhitespacePasswordAccepted(t *testing.T) {
	s := NewStore(nil)
	u, err := s.AddUser("alice", "Paris", "  ", RoleUser)
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("  "))
}

func TestStoreDuplicateNickname(t *testing.T) {
	s := NewStore(nil)

	_, err := s.AddUser("Bob", "Rome", "pw", RoleUser)
	require.NoError(t, err)

	_, err = s.AddUser(" bob ", "Oslo", "other", RoleUser)
	assert.ErrorIs(t, err, ErrDuplicateNickname)

	u, ok := s.GetUser("BOB")
	require.True(t, ok)
	assert.Equal(t, "Rome", u.HomeCity())
	assert.Equal(t, 1, s.Len())
}

func TestStoreEnsureAdminIdempotent(t *testing.T) {
	s := NewStore(nil)

	first := s.EnsureAdmin("root", "Jerusalem", "secret")
	second := s.EnsureAdmin(" ROOT ", "Haifa", "changed")

	assert.Same(t, first, second)
	assert.Equal(t, RoleAdmin, second.Role())
	assert.Equal(t, "Jerusalem", second.HomeCity())
	assert.True(t, second.CheckPassword("secret"))
	assert.False(t, second.CheckPassword("changed"))
	assert.Equal(t, 1, s.Len())
}

func TestStoreEnsureAdminKeepsExistingUser(t *testing.T) {
	s := NewStore(nil)
	u, err := s.AddUser("root", "Paris", "pw", RoleUser)
	require.NoError(t, err)

	got := s.EnsureAdmin("root", "Jerusalem", "secret")
	assert.Same(t, u, got)
	assert.Equal(t, RoleUser, got.Role())
}

func TestStoreListUsers(t *testing.T) {
	s := NewStore(nil)
	for _, n := range []string{"carol", "Alice", "bob"} {
		_, err := s.AddUser(n, "Paris", "pw", RoleUser)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Alice", "bob", "carol"}, s.ListUsers())
	assert.Empty(t, NewStore(nil).ListUsers())
}

func TestStoreAuthenticate(t *testing.T) {
	s := NewStore(nil)
	alice, err := s.AddUser("Alice", "Paris", "pw1", RoleUser)
	require.NoError(t, err)

	u, err := s.Authenticate("alice", "pw1")
	require.NoError(t, err)
	assert.Same(t, alice, u)

	_, err = s.Authenticate("alice", "wrongpw")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = s.Authenticate("carol", "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStoreDeleteUser(t *testing.T) {
	s := NewStore(nil)
	root := s.EnsureAdmin("root", "Jerusalem", "secret")
	alice, err := s.AddUser("Alice", "Paris", "pw", RoleUser)
	require.NoError(t, err)
	_, err = s.AddUser("Bob", "Rome", "pw", RoleUser)
	require.NoError(t, err)

	t.Run("non-admin is denied", func(t *testing.T) {
		err := s.DeleteUser("bob", alice)
		assert.ErrorIs(t, err, ErrAccessDenied)
		_, ok := s.GetUser("bob")
		assert.True(t, ok)

		assert.ErrorIs(t, s.DeleteUser("bob", nil), ErrAccessDenied)
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteUser("nobody", root), ErrUserNotFound)
	})

	t.Run("admin deletes", func(t *testing.T) {
		require.NoError(t, s.DeleteUser(" BOB ", root))
		_, ok := s.GetUser("bob")
		assert.False(t, ok)
		assert.ErrorIs(t, s.DeleteUser("bob", root), ErrUserNotFound)
		assert.Equal(t, []string{"Alice", "root"}, s.ListUsers())
	})

	t.Run("self deletion allowed", func(t *testing.T) {
		require.NoError(t, s.DeleteUser("root", root))
		_, ok := s.GetUser("root")
		assert.False(t, ok)
	})
}

func TestStoreDeletableUsers(t *testing.T) {
	s := NewStore(nil)
	root := s.EnsureAdmin("Root", "Jerusalem", "secret")
	for _, n := range []string{"bob", "alice"} {
		_, err := s.AddUser(n, "Paris", "pw", RoleUser)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"alice", "bob"}, s.DeletableUsers(root))
}

func TestStoreConcurrentUse(t *testing.T) {
	const (
		workers = 8
		lookups = 50
	)

	s := NewStore(nil)
	root := s.EnsureAdmin("root", "Jerusalem", "secret")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			u, err := s.AddUser(fmt.Sprintf("user%d", i), "Paris", "pw", RoleUser)
			if !assert.NoError(t, err) {
				return
			}
			for j := 0; j < lookups; j++ {
				u.AddCity([]string{"Paris", "Berlin"}[j%2])
			}

			_, err = s.AddUser(fmt.Sprintf("temp%d", i), "Rome", "pw", RoleUser)
			if assert.NoError(t, err) {
				assert.NoError(t, s.DeleteUser(fmt.Sprintf("temp%d", i), root))
			}
		}(i)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < lookups; j++ {
				report, err := s.AllStats(root)
				if !assert.NoError(t, err) {
					return
				}
				sum := 0
				for _, c := range report.TopCitiesAllUsers {
					sum += c.Count
				}
				assert.Equal(t, report.TotalRequestsAllUsers, sum)
			}
		}()
	}
	wg.Wait()

	report, err := s.AllStats(root)
	require.NoError(t, err)
	assert.Equal(t, workers*lookups, report.TotalRequestsAllUsers)
	assert.Equal(t, []CityCount{
		{City: "Paris", Count: workers * lookups / 2},
		{City: "Berlin", Count: workers * lookups / 2},
	}, report.TopCitiesAllUsers)
	assert.Len(t, report.PerUser, workers+1)
	assert.Equal(t, workers+1, s.Len())
}
