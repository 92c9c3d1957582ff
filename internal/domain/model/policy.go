package model

// VotingPolicy holds the repository-specific constants of the voting
// process. They come from the TOML policy file; zero values fall back to
// DefaultVotingPolicy.
type VotingPolicy struct {
	// ContributorWeight scales contributor votes when measuring variance.
	ContributorWeight int
	// VoterWeight scales non-contributor votes when measuring variance.
	VoterWeight int
	// MinThreshold is the floor of the approval threshold.
	MinThreshold int
	// WatcherFraction of repository watchers needed to approve.
	WatcherFraction float64
	// MentionFraction of the threshold the sum must reach before the
	// meritocracy is pinged about a stalled PR.
	MentionFraction float64
	// MeritocracyQuorum is how many meritocracy members (other than the
	// author) must vote in favour for the meritocracy to be satisfied.
	MeritocracyQuorum int
}

const (
	defaultContributorWeight = 2
	defaultWatcherFraction   = 0.03
	defaultMentionFraction   = 0.5
)

// DefaultVotingPolicy returns the policy used when no policy file is set.
func DefaultVotingPolicy() VotingPolicy {
	return VotingPolicy{
		ContributorWeight: defaultContributorWeight,
		VoterWeight:       1,
		MinThreshold:      1,
		WatcherFraction:   defaultWatcherFraction,
		MentionFraction:   defaultMentionFraction,
		MeritocracyQuorum: 1,
	}
}

// WithDefaults returns p with every non-positive field replaced by its
// default value.
func (p VotingPolicy) WithDefaults() VotingPolicy {
	d := DefaultVotingPolicy()
	if p.ContributorWeight <= 0 {
		p.ContributorWeight = d.ContributorWeight
	}
	if p.VoterWeight <= 0 {
		p.VoterWeight = d.VoterWeight
	}
	if p.MinThreshold <= 0 {
		p.MinThreshold = d.MinThreshold
	}
	if p.WatcherFraction <= 0 {
		p.WatcherFraction = d.WatcherFraction
	}
	if p.MentionFraction <= 0 {
		p.MentionFraction = d.MentionFraction
	}
	if p.MeritocracyQuorum <= 0 {
		p.MeritocracyQuorum = d.MeritocracyQuorum
	}
	return p
}
