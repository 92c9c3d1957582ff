package model

import (
	"sort"
	"strings"
)

// Vote maps a lowercase voter login to a signed vote weight for one PR.
type Vote map[string]int

// Set records weight for login, normalizing the login to lowercase so the
// same person voting under different casing counts once.
func (v Vote) Set(login string, weight int) {
	v[strings.ToLower(login)] = weight
}

// Get returns the weight recorded for login and whether one exists.
func (v Vote) Get(login string) (int, bool) {
	w, ok := v[strings.ToLower(login)]
	return w, ok
}

// Voters returns the distinct voter logins in ascending order.
func (v Vote) Voters() []string {
	voters := make([]string, 0, len(v))
	for login := range v {
		voters = append(voters, login)
	}
	sort.Strings(voters)
	return voters
}

// VoteTotal is the aggregate of a Vote: the signed sum and a non-negative
// variance that measures how contested the outcome is.
type VoteTotal struct {
	Sum      int
	Variance int
}

// VoteSignal is one raw vote observation fetched from GitHub before it is
// collected into a Vote.
type VoteSignal struct {
	Login  string
	Weight int    // +1 or -1.
	Source string // SourceReaction or SourceReview.
	// Current is false for reviews submitted against an older head commit.
	Current bool
}
