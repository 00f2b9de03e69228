package analysis

// Event types emitted on a run's event stream. A stream is zero or more
// progress events followed by exactly one terminal event (complete or
// error), after which the channel is closed.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// Progress statuses.
const (
	StatusExtracting = "extracting"
	StatusAnalyzing  = "analyzing"
)

// Event is one message on a run's event stream.
type Event struct {
	Type          string      `json:"type"`
	Status        string      `json:"status,omitempty"`
	ClauseID      string      `json:"clauseId,omitempty"`
	ClauseNumber  string      `json:"clauseNumber,omitempty"`
	CurrentClause int         `json:"currentClause,omitempty"`
	TotalClauses  int         `json:"totalClauses,omitempty"`
	Message       string      `json:"message,omitempty"`
	Summary       *RunSummary `json:"summary,omitempty"`
}

// RunSummary describes a completed run.
type RunSummary struct {
	AgreementID      string  `json:"agreementId"`
	Mode             string  `json:"mode"`
	OverallRiskScore string  `json:"overallRiskScore"`
	TotalClauses     int     `json:"totalClauses,omitempty"`
	TotalRules       int     `json:"totalRules"`
	AssessmentCount  int     `json:"assessmentCount"`
	DurationMs       float64 `json:"durationMs"`
}

func progressEvent(status, message string) Event {
	return Event{Type: EventProgress, Status: status, Message: message}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
