package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func printMeritocracy(w io.Writer, m application.Meritocracy) {
	members := m.Members.Sorted()
	headerColor.Fprintf(w, "Meritocracy (%d members)\n", len(members))
	for _, login := range members {
		var tags []string
		if containsLogin(m.TopContributors, login) {
			tags = append(tags, "contributor")
		}
		if containsLogin(m.TopVoters, login) {
			tags = append(tags, "voter")
		}
		fmt.Fprintf(w, "  %-24s %v\n", login, tags)
	}
}

func printVoters(w io.Writer, voters []model.VoterCredit) {
	headerColor.Fprintf(w, "%-24s %s\n", "LOGIN", "VOTES")
	for _, v := range voters {
		fmt.Fprintf(w, "%-24s %d\n", v.Login, v.Votes)
	}
}

func printCycle(w io.Writer, result application.CycleResult, cycleErr error) {
	headerColor.Fprintf(w, "Cycle %s\n", result.ID)
	fmt.Fprintf(w, "  threshold   %d\n", result.Threshold)
	fmt.Fprintf(w, "  meritocracy %d members\n", len(result.Meritocracy))

	for _, o := range result.Outcomes {
		c := warnColor
		switch o.Action {
		case application.ActionMerged, application.ActionAcceptedStatus:
			c = successColor
		case application.ActionClosed, application.ActionRejectedStatus, application.ActionCantMerge:
			c = errorColor
		}
		fmt.Fprintf(w, "  #%-6d ", o.Number)
		c.Fprintf(w, "%-16s", o.Action)
		fmt.Fprintf(w, " total=%d variance=%d\n", o.Decision.Total.Sum, o.Decision.Total.Variance)
	}

	fmt.Fprintf(w, "  merged %d, rejected %d, pending %d\n", result.Merged, result.Rejected, result.Pending)
	if result.RestartRequested {
		warnColor.Fprintln(w, "  restart requested")
	}
	if cycleErr != nil {
		errorColor.Fprintf(w, "  aborted: %v\n", cycleErr)
	}
}

func containsLogin(logins []string, login string) bool {
	for _, l := range logins {
		if l == login {
			return true
		}
	}
	return false
}
