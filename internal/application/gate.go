package application

import (
	"sort"
	"strings"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// Meritocracy is the trusted-voter view computed at the start of a cycle.
type Meritocracy struct {
	// Members is the union of the top voters and the top contributors.
	Members model.MeritocracySet
	// Contributors holds every contributor login, not only the top ones.
	// VoteTally uses it to classify voters.
	Contributors    model.MeritocracySet
	TopVoters       []string
	TopContributors []string
}

// BuildMeritocracy unions the top voters with the topContributors highest
// ranked contributors. topVoters must already be ranked and truncated (the
// VoterStore orders by votes desc, then login asc). Contributors are ranked
// by Total descending with sort.SliceStable, so ties keep the order GitHub
// returned them in.
func BuildMeritocracy(topVoters []model.VoterCredit, contributors []model.ContributorStat, topContributors int) Meritocracy {
	ranked := make([]model.ContributorStat, len(contributors))
	copy(ranked, contributors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	all := model.NewMeritocracySet()
	top := model.NewMeritocracySet()
	topContributorLogins := make([]string, 0, topContributors)
	for i, c := range ranked {
		login := strings.ToLower(c.Login)
		all.Add(login)
		if i < topContributors {
			top.Add(login)
			topContributorLogins = append(topContributorLogins, login)
		}
	}

	voters := model.NewMeritocracySet()
	topVoterLogins := make([]string, 0, len(topVoters))
	for _, v := range topVoters {
		login := strings.ToLower(v.Login)
		voters.Add(login)
		topVoterLogins = append(topVoterLogins, login)
	}

	return Meritocracy{
		Members:         voters.Union(top),
		Contributors:    all,
		TopVoters:       topVoterLogins,
		TopContributors: topContributorLogins,
	}
}

// MeritocracySatisfied reports whether at least quorum meritocracy members,
// not counting the PR author, voted in favour.
func MeritocracySatisfied(votes model.Vote, meritocracy model.MeritocracySet, author string, quorum int) bool {
	if quorum <= 0 {
		quorum = 1
	}

	author = strings.ToLower(author)
	var approvals int
	for login, weight := range votes {
		if login == author || weight <= 0 {
			continue
		}
		if meritocracy.Contains(login) {
			approvals++
		}
	}
	return approvals >= quorum
}
