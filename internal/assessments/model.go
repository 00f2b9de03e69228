package assessments

import (
	"strings"
	"time"
)

// Flag colors, ordered GREEN < YELLOW < RED.
const (
	FlagGreen  = "GREEN"
	FlagYellow = "YELLOW"
	FlagRed    = "RED"
)

// ParseFlag case-normalizes raw and reports whether it is one of the three
// canonical flag colors.
func ParseFlag(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case FlagGreen:
		return FlagGreen, true
	case FlagYellow:
		return FlagYellow, true
	case FlagRed:
		return FlagRed, true
	default:
		return "", false
	}
}

func flagRank(flag string) int {
	switch flag {
	case FlagRed:
		return 2
	case FlagYellow:
		return 1
	default:
		return 0
	}
}

// Worst returns the most severe of the given flags, or GREEN when none are
// given.
func Worst(flags ...string) string {
	worst := FlagGreen
	for _, flag := range flags {
		if flagRank(flag) > flagRank(worst) {
			worst = flag
		}
	}
	return worst
}

// Evidence is a quoted span supporting an assessment. Spans are owned by
// their assessment and deleted with it.
type Evidence struct {
	Text        string `json:"text"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Context     string `json:"context,omitempty"`
}

// Assessment is a verdict for one (clause-or-agreement, rule) pair.
// Assessments are created fresh on every analysis run; all prior
// assessments for the agreement are discarded before new ones are written.
type Assessment struct {
	ID          string     `json:"id"`
	AgreementID string     `json:"agreementId"`
	RuleID      string     `json:"ruleId"`
	ClauseID    string     `json:"clauseId,omitempty"`
	FlagColor   string     `json:"flagColor"`
	Explanation string     `json:"explanation"`
	Evidence    []Evidence `json:"evidence,omitempty"`
	Confidence  *float64   `json:"confidence,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
