package model

// Disposition is the outcome the engine reaches for a PR in one cycle.
type Disposition string

const (
	DispositionApproved Disposition = "approved"
	DispositionRejected Disposition = "rejected"
	DispositionPending  Disposition = "pending"
)

// StatusKind is the kind of commit status posted on a PR's head commit.
type StatusKind string

const (
	StatusAccepted StatusKind = "accepted"
	StatusRejected StatusKind = "rejected"
	StatusPending  StatusKind = "pending"
)

// State maps a StatusKind onto a GitHub commit status state.
func (k StatusKind) State() string {
	switch k {
	case StatusAccepted:
		return "success"
	case StatusRejected:
		return "failure"
	default:
		return "pending"
	}
}

// Labels applied to PRs by the lifecycle.
const (
	LabelAccepted  = "accepted"
	LabelRejected  = "rejected"
	LabelCantMerge = "can't merge"
)

// Vote signal sources.
const (
	SourceReaction = "reaction"
	SourceReview   = "review"
)
