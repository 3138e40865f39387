package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CreateInviteRequest asks for a new invite; Minutes is an optional TTL.
type CreateInviteRequest struct {
	Minutes any `json:"minutes" swaggertype:"integer" example:"60"`
}

// TTLMinutes returns the requested lifetime in whole minutes, or 0 when the
// invite should never expire. Non-numeric and non-positive values mean 0.
func (r CreateInviteRequest) TTLMinutes() int {
	var f float64
	switch v := r.Minutes.(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}
