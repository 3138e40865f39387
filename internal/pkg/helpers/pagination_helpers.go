package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based

	// MaxPage keeps (page-1)*limit within a signed 64-bit OFFSET
	MaxPage = math.MaxInt / MaxPageSize
)

// NormalizePage clamps page and limit to the supported range.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// CalculateOffsetLimit converts a 1-based page into SQL offset/limit.
func CalculateOffsetLimit(page, limit int) (offset uint64, size uint64) {
	page, limit = NormalizePage(page, limit)
	return uint64((page - 1) * limit), uint64(limit)
}

// ParsePaginationParams reads page and limit from the query string.
// Unparseable values fall back to defaults.
func ParsePaginationParams(c *gin.Context) (page, limit int) {
	page = ParseIntDefault(c.Query("page"), DefaultPage)
	limit = ParseIntDefault(c.Query("limit"), DefaultPageSize)
	return NormalizePage(page, limit)
}

// ParseIntDefault parses s as a base-10 integer or returns def.
func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
