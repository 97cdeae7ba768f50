// Package ranking computes competition leaderboards from workouts and entry scores.
//
// Every function in this package is pure: inputs are never modified and identical inputs
// always produce identical output, so callers may rank concurrently without coordination.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fitlo/fitlo/internal/models"
)

// ErrInvalidScore is returned when a raw score cannot be turned into a number
var ErrInvalidScore = errors.New("invalid score")

// ParseScore converts a raw score string into a comparable number.
// Time units accept clock notation (MM:SS or HH:MM:SS) and are returned in seconds.
func ParseScore(value string, unit models.Unit) (float64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidScore)
	}

	if unit.IsTime() && strings.Contains(v, ":") {
		return parseClock(v)
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, value)
	}
	return f, nil
}

// finite rejects the NaN and Inf spellings strconv accepts
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseClock parses MM:SS or HH:MM:SS into seconds
func parseClock(v string) (float64, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q is not MM:SS or HH:MM:SS", ErrInvalidScore, v)
	}

	nums := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || f < 0 || !finite(f) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidScore, v)
		}
		nums[i] = f
	}

	if len(nums) == 2 {
		return nums[0]*60 + nums[1], nil
	}
	return nums[0]*3600 + nums[1]*60 + nums[2], nil
}
