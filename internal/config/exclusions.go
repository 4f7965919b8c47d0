package config

import (
	"time"

	"bandline/internal/timeaxis"
)

// Exclusions expands the configured recurring non-working time into concrete
// ranges within [start, end).
func (c Config) Exclusions(start, end time.Time) []timeaxis.Range {
	var out []timeaxis.Range
	day := start.UTC().Truncate(24 * time.Hour)
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		if c.Axis.ExcludeWeekends {
			switch day.Weekday() {
			case time.Saturday, time.Sunday:
				out = append(out, timeaxis.Range{
					StartMS: day.UnixMilli(),
					EndMS:   day.AddDate(0, 0, 1).UnixMilli(),
				})
				continue
			}
		}
		out = append(out, c.nightRanges(day)...)
	}
	return clampRanges(out, start.UnixMilli(), end.UnixMilli())
}

// nightRanges returns the per-day night exclusion, split in two when it
// wraps midnight (e.g. 22..6 yields 00:00-06:00 and 22:00-24:00).
func (c Config) nightRanges(day time.Time) []timeaxis.Range {
	from, to := c.Axis.NightStartHour, c.Axis.NightEndHour
	if from == to {
		return nil
	}
	hour := func(h int) int64 { return day.UnixMilli() + int64(h)*3600_000 }
	if from < to {
		return []timeaxis.Range{{StartMS: hour(from), EndMS: hour(to)}}
	}
	return []timeaxis.Range{
		{StartMS: hour(0), EndMS: hour(to)},
		{StartMS: hour(from), EndMS: hour(24)},
	}
}

func clampRanges(ranges []timeaxis.Range, startMS, endMS int64) []timeaxis.Range {
	var out []timeaxis.Range
	for _, r := range ranges {
		if r.EndMS <= startMS || r.StartMS >= endMS {
			continue
		}
		if r.StartMS < startMS {
			r.StartMS = startMS
		}
		if r.EndMS > endMS {
			r.EndMS = endMS
		}
		out = append(out, r)
	}
	return out
}
