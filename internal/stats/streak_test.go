package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setOf(dates ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"single", []string{"2024-01-01"}, 1},
		{"gap", []string{"2024-01-01", "2024-01-02", "2024-01-04"}, 2},
		{"later run wins", []string{"2024-01-01", "2024-01-03", "2024-01-04", "2024-01-05"}, 3},
		{"month boundary", []string{"2024-01-30", "2024-01-31", "2024-02-01"}, 3},
		{"leap day", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{"duplicates do not break run", []string{"2024-01-01", "2024-01-02", "2024-01-02", "2024-01-03"}, 3},
		{"no consecutive", []string{"2024-01-01", "2024-01-03", "2024-01-05"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestStreak(tt.dates))
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	assert.Equal(t, 3, CurrentStreak(setOf("2024-01-03", "2024-01-04", "2024-01-05"), "2024-01-05"))
	assert.Equal(t, 0, CurrentStreak(setOf("2024-01-03"), "2024-01-05"))
	assert.Equal(t, 0, CurrentStreak(setOf(), "2024-01-05"))
	assert.Equal(t, 2, CurrentStreak(setOf("2023-12-31", "2024-01-01", "2023-12-29"), "2024-01-01"))
}

func TestCurrentStreak_AnchorAgnostic(t *testing.T) {
	set := setOf("2024-01-03", "2024-01-04")
	assert.Equal(t, 0, CurrentStreak(set, "2024-01-05"))
	assert.Equal(t, 2, CurrentStreak(set, "2024-01-04"))
}

func TestCurrentStreak_MalformedAnchor(t *testing.T) {
	assert.Equal(t, 0, CurrentStreak(setOf("junk"), "junk"))
}
