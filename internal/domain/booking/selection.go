package booking

// SelectSlot picks the best candidate for the window: capacity at least the
// required size, time inside [WindowStart, WindowEnd], and among those the
// one closest to the desired time. Ties go to the earlier slot; a tie on time
// too keeps the first match, so input order makes selection deterministic.
//
// Returns false when nothing qualifies; callers treat that as "no matching
// slot yet" and retry.
func SelectSlot(slots []Slot, window TargetWindow) (Slot, bool) {
	var (
		best     Slot
		bestDist int
		found    bool
	)
	for _, s := range slots {
		if s.Capacity < window.RequiredCapacity {
			continue
		}
		if s.Time < window.WindowStart || s.Time > window.WindowEnd {
			continue
		}
		d := s.Time.DistanceMinutes(window.Desired)
		switch {
		case !found:
			best, bestDist, found = s, d, true
		case d < bestDist:
			best, bestDist = s, d
		case d == bestDist && s.Time < best.Time:
			best, bestDist = s, d
		}
	}
	return best, found
}
