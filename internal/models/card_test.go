package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCardExpiredAt(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expiration time.Time
		want       bool
	}{
		{"Yesterday", time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), true},
		{"Today", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), false},
		{"TodayLaterHour", time.Date(2026, time.March, 15, 23, 0, 0, 0, time.UTC), false},
		{"Tomorrow", time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC), false},
		{"LastYear", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{ExpirationDate: tt.expiration}
			assert.Equal(t, tt.want, card.ExpiredAt(now))
		})
	}
}

func TestCardStatusValid(t *testing.T) {
	assert.True(t, CardStatusActive.Valid())
	assert.True(t, CardStatusBlocked.Valid())
	assert.True(t, CardStatusExpired.Valid())
	assert.False(t, CardStatus("FROZEN").Valid())
	assert.False(t, CardStatus("").Valid())
}

func TestUserIsAdmin(t *testing.T) {
	admin := User{Roles: []Role{RoleUser, RoleAdmin}}
	user := User{Roles: []Role{RoleUser}}
	nobody := User{}

	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
	assert.False(t, nobody.IsAdmin())
}
