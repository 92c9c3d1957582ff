package application

import (
	"math"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// ApprovalThreshold derives the number of net votes needed to approve from
// the repository watcher count: ceil(watchers * WatcherFraction), floored
// at MinThreshold.
func ApprovalThreshold(watchers int, policy model.VotingPolicy) int {
	policy = policy.WithDefaults()
	threshold := int(math.Ceil(float64(watchers) * policy.WatcherFraction))
	return max(policy.MinThreshold, threshold)
}

// Decide classifies a PR from its tally, threshold, meritocracy
// participation, and time since its last code update. It performs no I/O.
//
// A PR is approved iff the sum reaches the threshold and the meritocracy is
// satisfied. It is contested iff the variance reaches the threshold or it is
// not approved; contested PRs are gated on the extended window. A PR that is
// not approved is rejected once in window or while its sum is negative, and
// pending otherwise.
func Decide(total model.VoteTotal, threshold int, meritocracySatisfied bool, elapsed time.Duration, windows VotingWindowPolicy) model.Decision {
	approved := total.Sum >= threshold && meritocracySatisfied
	contested := total.Variance >= threshold || !approved
	window, inWindow := windows.Apply(contested, elapsed)

	disposition := model.DispositionPending
	switch {
	case approved:
		disposition = model.DispositionApproved
	case inWindow || total.Sum < 0:
		disposition = model.DispositionRejected
	}

	return model.Decision{
		Disposition:          disposition,
		Total:                total,
		Threshold:            threshold,
		MeritocracySatisfied: meritocracySatisfied,
		Contested:            contested,
		Window:               window,
		Elapsed:              elapsed,
		InWindow:             inWindow,
	}
}
