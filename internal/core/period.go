package core

// Period is an inclusive range of calendar days.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod returns InvalidRange when end is before start. A single-day
// period (start == end) is valid.
func NewPeriod(start, end Date) (Period, error) {
	p := Period{Start: start, End: end}
	if !p.Valid() {
		return Period{}, InvalidRange()
	}
	return p, nil
}

func (p Period) Valid() bool {
	return !p.End.Before(p.Start.Time)
}

// Overlaps reports whether both periods share at least one day:
// s1 <= e2 && s2 <= e1. Adjacent periods do not overlap.
func (p Period) Overlaps(o Period) bool {
	return !p.Start.After(o.End.Time) && !o.Start.After(p.End.Time)
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// Days returns the number of days covered, counting both ends.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// FindOverlap returns the first budget whose period overlaps candidate,
// ignoring the budget with id exclude (use 0 on create).
func FindOverlap(candidate Period, budgets []Budget, exclude int64) (Budget, bool) {
	for _, b := range budgets {
		if exclude != 0 && b.ID == exclude {
			continue
		}
		if candidate.Overlaps(b.Period()) {
			return b, true
		}
	}
	return Budget{}, false
}
