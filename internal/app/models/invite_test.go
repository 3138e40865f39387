package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInviteIsUsable(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	user := uuid.New()

	cases := []struct {
		name   string
		invite Invite
		want   bool
	}{
		{"fresh, no expiry", Invite{}, true},
		{"expires later", Invite{ExpiresAt: &future}, true},
		{"expired", Invite{ExpiresAt: &past}, false},
		{"expires exactly now", Invite{ExpiresAt: &now}, false},
		{"used", Invite{UsedAt: &past, UsedByID: &user}, false},
		{"revoked", Invite{RevokedAt: &past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.invite.IsUsable(now))
		})
	}
}

func TestParseSortFieldFallsBack(t *testing.T) {
	assert.Equal(t, SortYear, ParseSortField("year"))
	assert.Equal(t, SortCreatedAt, ParseSortField("password_hash"))
	assert.Equal(t, SortCreatedAt, ParseSortField(""))
	assert.Equal(t, SortAsc, ParseSortDir("asc"))
	assert.Equal(t, SortDesc, ParseSortDir("ASC; drop table"))
}
