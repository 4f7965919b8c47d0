package layout

import (
	"sort"

	"bandline/internal/model"
)

// BandAssignment is the result of packing one row's spans into bands.
// BandOf is always populated. Frac is populated by PackOverlay only and
// carries each span's vertical slice within the single band.
type BandAssignment struct {
	BandOf        map[string]int
	Frac          map[string]FracSlot
	BandsRequired int
}

// FracSlot is a fractional vertical slice of one band, both values in [0,1].
type FracSlot struct {
	Top    float64
	Height float64
}

// sortSpans orders spans for deterministic packing: start ascending, then
// end descending (longer bars float up), then name, then id. The id tiebreak
// keeps output stable for identical spans, which snapshot tests rely on.
func sortSpans(spans []model.Span) []model.Span {
	out := append([]model.Span(nil), spans...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartMS != b.StartMS {
			return a.StartMS < b.StartMS
		}
		if a.EndMS != b.EndMS {
			return a.EndMS > b.EndMS
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}

// bandState tracks one band during the greedy scan. msAtEnd distinguishes a
// band whose latest occupant is a milestone sitting exactly at maxEnd: a new
// span starting there would overlap the milestone, while it would only touch
// a normal interval ending there.
type bandState struct {
	maxEnd  int64
	msAtEnd bool
}

func (b *bandState) fits(s model.Span) bool {
	if s.StartMS > b.maxEnd {
		return true
	}
	return s.StartMS == b.maxEnd && !b.msAtEnd
}

func (b *bandState) take(s model.Span) {
	if s.EndMS > b.maxEnd {
		b.maxEnd = s.EndMS
		b.msAtEnd = s.Milestone()
	} else if s.EndMS == b.maxEnd && s.Milestone() {
		b.msAtEnd = true
	}
}

// PackStack assigns each span the lowest-numbered band whose occupants it
// does not overlap in time. Sorting once then scanning bands is O(n log n)
// for typical rows; a row where everything overlaps everything degrades to
// O(n^2) since every span probes every band before opening a new one.
func PackStack(spans []model.Span) BandAssignment {
	sorted := sortSpans(spans)
	res := BandAssignment{BandOf: make(map[string]int, len(sorted))}

	var bands []bandState
	for _, s := range sorted {
		placed := false
		for i := range bands {
			if bands[i].fits(s) {
				bands[i].take(s)
				res.BandOf[s.ID] = i
				placed = true
				break
			}
		}
		if !placed {
			bands = append(bands, bandState{maxEnd: s.EndMS, msAtEnd: s.Milestone()})
			res.BandOf[s.ID] = len(bands) - 1
		}
	}
	res.BandsRequired = len(bands)
	if res.BandsRequired == 0 {
		res.BandsRequired = 1
	}
	return res
}

// PackOverlay squeezes every span into a single band. Spans are grouped into
// clusters of transitive overlap; within a cluster each span gets an equal
// horizontal slice of the band height. Touching spans land in different
// clusters and keep full height.
func PackOverlay(spans []model.Span) BandAssignment {
	sorted := sortSpans(spans)
	stacked := PackStack(spans)

	res := BandAssignment{
		BandOf:        make(map[string]int, len(sorted)),
		Frac:          make(map[string]FracSlot, len(sorted)),
		BandsRequired: 1,
	}

	// Clusters form along the sorted order: a span that fits "after" the
	// running cluster extent starts a new cluster.
	var cluster []model.Span
	var extent bandState
	flush := func() {
		if len(cluster) == 0 {
			return
		}
		slots := 0
		for _, s := range cluster {
			if b := stacked.BandOf[s.ID]; b+1 > slots {
				slots = b + 1
			}
		}
		for _, s := range cluster {
			res.BandOf[s.ID] = 0
			res.Frac[s.ID] = FracSlot{
				Top:    float64(stacked.BandOf[s.ID]) / float64(slots),
				Height: 1 / float64(slots),
			}
		}
		cluster = cluster[:0]
	}

	for _, s := range sorted {
		if len(cluster) > 0 && extent.fits(s) {
			flush()
			extent = bandState{maxEnd: s.EndMS, msAtEnd: s.Milestone()}
		} else if len(cluster) == 0 {
			extent = bandState{maxEnd: s.EndMS, msAtEnd: s.Milestone()}
		} else {
			extent.take(s)
		}
		cluster = append(cluster, s)
	}
	flush()
	return res
}
