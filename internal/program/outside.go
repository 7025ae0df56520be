package program

import "traincal/internal/model"

// OutsidePick remembers the single out-of-range date pinned by ad-hoc
// clicks. It belongs to the interactive session, not to the program itself:
// it is never serialized, and a freshly loaded program starts with an empty
// pick.
type OutsidePick struct {
	last *model.Date
}

// Date returns the currently pinned date, if any.
func (p *OutsidePick) Date() (model.Date, bool) {
	if p == nil || p.last == nil {
		return model.Date{}, false
	}
	return *p.last, true
}

// Clear forgets the pinned date without touching any override set.
func (p *OutsidePick) Clear() {
	if p != nil {
		p.last = nil
	}
}

// ToggleOutsideSelection toggles the forced selection of a date outside the
// defined range, keeping at most one picked date at a time. Dates inside the
// range are ignored.
//
// An earlier pick is only un-forced when it is already absent from forceOn;
// since picking a date puts it there, a pick still in forceOn is left alone
// and only the pick pointer moves. That guard cannot tell a picked date from
// one forced on through the per-date menu, so the behavior is kept exactly
// as it has always been.
func (s *State) ToggleOutsideSelection(d model.Date, pick *OutsidePick) {
	if s.IsInsideRange(d) {
		return
	}
	if pick == nil {
		pick = &OutsidePick{}
	}

	if last, ok := pick.Date(); ok && last != d {
		if _, forced := s.forceOn[last]; !forced {
			delete(s.forceOn, last)
		}
	}

	if _, ok := s.forceOn[d]; ok {
		delete(s.forceOn, d)
		if last, ok := pick.Date(); ok && last == d {
			pick.last = nil
		}
	} else {
		s.forceOn[d] = struct{}{}
		day := d
		pick.last = &day
	}
}
