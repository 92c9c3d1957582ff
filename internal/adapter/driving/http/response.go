package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Repo        string `json:"repo"`
	Time        string `json:"time"`
	LastCycleAt string `json:"last_cycle_at,omitempty"`
	LastCycleOK bool   `json:"last_cycle_ok"`
}

// MeritocracyResponse is the meritocracy of the most recent cycle.
type MeritocracyResponse struct {
	Members    []string `json:"members"`
	Count      int      `json:"count"`
	CycleID    string   `json:"cycle_id"`
	ComputedAt string   `json:"computed_at"`
}

// VoterResponse is the JSON representation of one voter's credit.
type VoterResponse struct {
	Login     string `json:"login"`
	Votes     int    `json:"votes"`
	CreatedAt string `json:"created_at"`
}

// CycleResponse summarizes one decision cycle.
type CycleResponse struct {
	ID               string            `json:"id"`
	StartedAt        string            `json:"started_at"`
	FinishedAt       string            `json:"finished_at"`
	RecordedAt       string            `json:"recorded_at"`
	Threshold        int               `json:"threshold"`
	Meritocracy      []string          `json:"meritocracy"`
	Merged           int               `json:"merged"`
	Rejected         int               `json:"rejected"`
	Pending          int               `json:"pending"`
	RestartRequested bool              `json:"restart_requested"`
	Error            string            `json:"error,omitempty"`
	Outcomes         []OutcomeResponse `json:"outcomes"`
}

// OutcomeResponse is what a cycle did with one pull request.
type OutcomeResponse struct {
	Number               int      `json:"number"`
	Action               string   `json:"action"`
	Disposition          string   `json:"disposition"`
	VoteTotal            int      `json:"vote_total"`
	Variance             int      `json:"variance"`
	Threshold            int      `json:"threshold"`
	MeritocracySatisfied bool     `json:"meritocracy_satisfied"`
	Contested            bool     `json:"contested"`
	InWindow             bool     `json:"in_window"`
	RemainingSeconds     int64    `json:"remaining_seconds"`
	Voters               []string `json:"voters"`
	Mentioned            bool     `json:"mentioned"`
}

func toMeritocracyResponse(result application.CycleResult, at time.Time) MeritocracyResponse {
	members := result.Meritocracy
	if members == nil {
		members = []string{}
	}
	return MeritocracyResponse{
		Members:    members,
		Count:      len(members),
		CycleID:    result.ID,
		ComputedAt: formatTime(at),
	}
}

func toVoterResponse(v model.VoterCredit) VoterResponse {
	return VoterResponse{
		Login:     v.Login,
		Votes:     v.Votes,
		CreatedAt: formatTime(v.CreatedAt),
	}
}

func toCycleResponse(result application.CycleResult, cycleErr error, at time.Time) CycleResponse {
	resp := CycleResponse{
		ID:               result.ID,
		StartedAt:        formatTime(result.StartedAt),
		FinishedAt:       formatTime(result.FinishedAt),
		RecordedAt:       formatTime(at),
		Threshold:        result.Threshold,
		Meritocracy:      result.Meritocracy,
		Merged:           result.Merged,
		Rejected:         result.Rejected,
		Pending:          result.Pending,
		RestartRequested: result.RestartRequested,
		Outcomes:         make([]OutcomeResponse, 0, len(result.Outcomes)),
	}
	if resp.Meritocracy == nil {
		resp.Meritocracy = []string{}
	}
	if cycleErr != nil {
		resp.Error = cycleErr.Error()
	}

	for _, o := range result.Outcomes {
		resp.Outcomes = append(resp.Outcomes, toOutcomeResponse(o))
	}

	return resp
}

func toOutcomeResponse(o application.PROutcome) OutcomeResponse {
	voters := o.Voters
	if voters == nil {
		voters = []string{}
	}
	d := o.Decision
	return OutcomeResponse{
		Number:               o.Number,
		Action:               o.Action,
		Disposition:          string(d.Disposition),
		VoteTotal:            d.Total.Sum,
		Variance:             d.Total.Variance,
		Threshold:            d.Threshold,
		MeritocracySatisfied: d.MeritocracySatisfied,
		Contested:            d.Contested,
		InWindow:             d.InWindow,
		RemainingSeconds:     int64(d.Remaining().Seconds()),
		Voters:               voters,
		Mentioned:            o.Mentioned,
	}
}

// formatTime renders t in RFC 3339 UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
