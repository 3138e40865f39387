package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/diploma-registry/internal/app/models"
)

func TestBuildDiplomaListQuery(t *testing.T) {
	year := 2024
	verified := true
	filter := models.DiplomaFilter{
		Query:       "ivan_%",
		Year:        &year,
		IsVerified:  &verified,
		Specialties: []string{"051", "072"},
		Sort:        models.SortYear,
		Dir:         models.SortAsc,
		Offset:      40,
		Limit:       20,
	}

	sql, args, err := buildDiplomaListQuery(psql, filter).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM diplomas WHERE")
	assert.Contains(t, sql, "(student_name ILIKE $1 OR diploma_number ILIKE $2)")
	assert.Contains(t, sql, "year = $3")
	assert.Contains(t, sql, "is_verified = $4")
	assert.Contains(t, sql, "specialty IN ($5,$6)")
	assert.Contains(t, sql, "ORDER BY year ASC, id ASC")
	assert.Contains(t, sql, "LIMIT 20")
	assert.Contains(t, sql, "OFFSET 40")

	require.Len(t, args, 6)
	assert.Equal(t, `%ivan\_\%%`, args[0])
	assert.Equal(t, `%ivan\_\%%`, args[1])
	assert.Equal(t, 2024, args[2])
	assert.Equal(t, true, args[3])
	assert.Equal(t, "051", args[4])
	assert.Equal(t, "072", args[5])
}

func TestApplyDiplomaFilterEmpty(t *testing.T) {
	sql, args, err := applyDiplomaFilter(psql.Select("COUNT(*)").From("diplomas"), models.DiplomaFilter{Query: "   "}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM diplomas", sql)
	assert.Empty(t, args)
}

func TestApplyDiplomaFilterEmptySpecialtySetMatchesNothing(t *testing.T) {
	sql, _, err := applyDiplomaFilter(psql.Select("id").From("diplomas"), models.DiplomaFilter{Specialties: []string{}}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(1=0)")
}

func TestSortWhitelist(t *testing.T) {
	assert.Equal(t, "created_at", mapSortFieldToColumn(models.SortField("password_hash")))
	assert.Equal(t, "student_name", mapSortFieldToColumn(models.SortStudentName))
	assert.Equal(t, "diploma_number", mapSortFieldToColumn(models.SortDiplomaNumber))
	assert.Equal(t, "DESC", sortDirection(models.SortDir("")))
	assert.Equal(t, "ASC", sortDirection(models.SortAsc))
}

func TestInviteKeyPredicate(t *testing.T) {
	sql, args, err := psql.Delete("invites").Where(inviteKeyPredicate(" k7q2zd ")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM invites WHERE code = $1", sql)
	assert.Equal(t, []interface{}{"K7Q2ZD"}, args)

	sql, args, err = psql.Delete("invites").Where(inviteKeyPredicate("0b5cfb0e-3c57-4d44-9a42-7a1c36f9b1aa")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM invites WHERE (id = $1 OR code = $2)", sql)
	assert.Len(t, args, 2)
}

func TestBuildDiplomaUpdateRefreshesUpdatedAt(t *testing.T) {
	id := uuid.New()
	verified := true

	sql, args, err := buildDiplomaUpdate(psql, id, models.DiplomaPatch{IsVerified: &verified}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "UPDATE diplomas SET is_verified = $1, updated_at = NOW() WHERE id = $2")
	assert.Contains(t, sql, "RETURNING id, ")
	assert.Equal(t, []interface{}{true, id}, args)

	fileURL := "/uploads/" + id.String() + ".pdf"
	sql, args, err = buildDiplomaUpdate(psql, id, models.DiplomaPatch{FileURL: &fileURL}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "SET file_url = $1, updated_at = NOW() WHERE id = $2")
	assert.Equal(t, []interface{}{fileURL, id}, args)
}
