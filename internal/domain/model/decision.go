package model

import "time"

// Decision is the full classification of one PR in one cycle. It is
// recomputed from live data every cycle and never persisted.
type Decision struct {
	Disposition          Disposition
	Total                VoteTotal
	Threshold            int
	MeritocracySatisfied bool
	// Contested is true when the variance reaches the threshold or the PR
	// is not approved. Contested PRs are gated on the extended window.
	Contested bool
	Window    time.Duration
	Elapsed   time.Duration
	InWindow  bool
}

// Approved reports whether the disposition is DispositionApproved.
func (d Decision) Approved() bool {
	return d.Disposition == DispositionApproved
}

// Remaining returns how long until the applicable window elapses, or zero
// once the PR is in window.
func (d Decision) Remaining() time.Duration {
	if d.InWindow || d.Elapsed >= d.Window {
		return 0
	}
	return d.Window - d.Elapsed
}
