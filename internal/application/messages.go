package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// maxStatusDescription is GitHub's limit on commit status descriptions.
const maxStatusDescription = 140

// statusDescription summarizes a decision for a commit status.
func statusDescription(kind model.StatusKind, d model.Decision) string {
	meritocracy := "no"
	if d.MeritocracySatisfied {
		meritocracy = "yes"
	}

	var desc string
	switch {
	case d.InWindow:
		desc = fmt.Sprintf("%s: vote %d/%d, meritocracy %s, window closed",
			kind, d.Total.Sum, d.Threshold, meritocracy)
	default:
		desc = fmt.Sprintf("%s: vote %d/%d, meritocracy %s, %s left in voting window",
			kind, d.Total.Sum, d.Threshold, meritocracy, formatDuration(d.Remaining()))
	}

	if len(desc) > maxStatusDescription {
		desc = desc[:maxStatusDescription]
	}
	return desc
}

// mergeCommitMessage is the body of the merge commit for an approved PR.
func mergeCommitMessage(pr model.PullRequest, votes model.Vote, d model.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merged #%d with a vote of %d (threshold %d)\n\n", pr.Number, d.Total.Sum, d.Threshold)
	writeVoteLines(&b, votes, "")
	return b.String()
}

// acceptComment is posted after a successful merge.
func acceptComment(sha string, votes model.Vote, d model.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":ok_woman: **PR passed with a vote of %d (%d needed)**\n\n", d.Total.Sum, d.Threshold)
	fmt.Fprintf(&b, ":tada: Merged as %s :tada:\n\n", sha)
	writeVoteSummary(&b, votes, d)
	return b.String()
}

// rejectComment is posted before a PR is closed.
func rejectComment(votes model.Vote, d model.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":no_good: **PR rejected with a vote of %d (%d needed)**\n\n", d.Total.Sum, d.Threshold)
	writeVoteSummary(&b, votes, d)
	b.WriteString("\nOpen a new PR to restart voting.\n")
	return b.String()
}

// meritocracyComment pings the meritocracy on a PR that has support but no
// trusted vote yet.
func meritocracyComment(mentions []string) string {
	var b strings.Builder
	b.WriteString(":bell: This PR has community support but is waiting on the meritocracy.\n\n")
	if len(mentions) == 0 {
		b.WriteString("There is nobody left to ping.\n")
		return b.String()
	}
	handles := make([]string, 0, len(mentions))
	for _, login := range mentions {
		handles = append(handles, "@"+login)
	}
	b.WriteString(strings.Join(handles, " "))
	b.WriteString(" please take a look and vote.\n")
	return b.String()
}

func writeVoteSummary(b *strings.Builder, votes model.Vote, d model.Decision) {
	meritocracy := ":x:"
	if d.MeritocracySatisfied {
		meritocracy = ":white_check_mark:"
	}
	fmt.Fprintf(b, "Meritocracy: %s\n\n", meritocracy)
	b.WriteString("Vote breakdown:\n\n")
	writeVoteLines(b, votes, "* ")
}

func writeVoteLines(b *strings.Builder, votes model.Vote, prefix string) {
	for _, login := range votes.Voters() {
		fmt.Fprintf(b, "%s%s: %+d\n", prefix, login, votes[login])
	}
}

// formatDuration renders d rounded to minutes, e.g. "2h5m" or "45m".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
