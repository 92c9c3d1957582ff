package model

import "time"

// VoterCredit is the persisted lifetime count of votes cast by one login.
// Votes never decreases.
type VoterCredit struct {
	Login     string
	Votes     int
	CreatedAt time.Time
}

// MeritocracyMention records that the meritocracy reminder comment was
// already requested for a commit. At most one exists per commit hash.
type MeritocracyMention struct {
	CommitHash string
	CreatedAt  time.Time
}
