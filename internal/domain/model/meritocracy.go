package model

import (
	"sort"
	"strings"
)

// ContributorStat is a repository contributor and their contribution count.
type ContributorStat struct {
	Login string
	Total int
}

// MeritocracySet is the set of trusted voter logins for one cycle. It is
// derived every cycle and never treated as authoritative state.
type MeritocracySet map[string]struct{}

// NewMeritocracySet builds a set from logins, lowercasing each one.
func NewMeritocracySet(logins ...string) MeritocracySet {
	set := make(MeritocracySet, len(logins))
	for _, login := range logins {
		set.Add(login)
	}
	return set
}

// Add inserts login in lowercase form.
func (m MeritocracySet) Add(login string) {
	if login == "" {
		return
	}
	m[strings.ToLower(login)] = struct{}{}
}

// Contains reports whether login (any casing) is a member.
func (m MeritocracySet) Contains(login string) bool {
	_, ok := m[strings.ToLower(login)]
	return ok
}

// Union returns a new set holding the members of both sets.
func (m MeritocracySet) Union(other MeritocracySet) MeritocracySet {
	out := make(MeritocracySet, len(m)+len(other))
	for login := range m {
		out[login] = struct{}{}
	}
	for login := range other {
		out[login] = struct{}{}
	}
	return out
}

// Without returns a copy of the set minus the given logins.
func (m MeritocracySet) Without(logins ...string) MeritocracySet {
	out := make(MeritocracySet, len(m))
	for login := range m {
		out[login] = struct{}{}
	}
	for _, login := range logins {
		delete(out, strings.ToLower(login))
	}
	return out
}

// Sorted returns the members in ascending order.
func (m MeritocracySet) Sorted() []string {
	logins := make([]string, 0, len(m))
	for login := range m {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}
