package stats

import "daybook/internal/logicalday"

// BestStreak returns the longest run of consecutive calendar days in an
// ascending list of dates.
func BestStreak(datesAsc []string) int {
	if len(datesAsc) == 0 {
		return 0
	}
	best, cur := 1, 1
	for i := 1; i < len(datesAsc); i++ {
		switch datesAsc[i] {
		case datesAsc[i-1]:
			// duplicate, run continues unchanged
		case logicalday.AddDays(datesAsc[i-1], 1):
			cur++
			if cur > best {
				best = cur
			}
		default:
			cur = 1
		}
	}
	return best
}

// CurrentStreak counts consecutive days present in set, walking backwards
// from anchor until the first gap.
func CurrentStreak(set map[string]struct{}, anchor string) int {
	if !logicalday.Valid(anchor) {
		return 0
	}
	n := 0
	for cursor := anchor; ; cursor = logicalday.AddDays(cursor, -1) {
		if _, ok := set[cursor]; !ok {
			return n
		}
		n++
	}
}
