package application

import (
	"strings"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// CollectVotes folds raw vote signals into one Vote per login and decides
// whether the meritocracy participated.
//
// Reactions are applied first and reviews override them. An approving
// review only counts while it targets the current head commit; a
// changes-requested review counts regardless. The author implicitly votes
// +1 for their own PR unless they voted against it.
func CollectVotes(pr model.PullRequest, signals []model.VoteSignal, meritocracy model.MeritocracySet, quorum int) (model.Vote, bool) {
	votes := model.Vote{}

	for _, s := range signals {
		if s.Source == model.SourceReaction && s.Weight != 0 {
			votes.Set(s.Login, sign(s.Weight))
		}
	}

	for _, s := range signals {
		if s.Source != model.SourceReview || s.Weight == 0 {
			continue
		}
		if s.Weight > 0 && !s.Current {
			continue
		}
		votes.Set(s.Login, sign(s.Weight))
	}

	author := strings.ToLower(pr.Author)
	if author != "" {
		if w, ok := votes.Get(author); !ok || w >= 0 {
			votes.Set(author, 1)
		}
	}

	return votes, MeritocracySatisfied(votes, meritocracy, author, quorum)
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
