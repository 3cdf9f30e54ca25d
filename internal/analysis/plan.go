package analysis

import "strings"

// Plan is the caller-selected tier controlling how many question items are
// generated.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// ParsePlan normalizes a raw plan value, defaulting to free.
func ParsePlan(raw string) Plan {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid":
		return PlanPaid
	default:
		return PlanFree
	}
}

// Limits holds the exact required counts for the question list fields.
type Limits struct {
	SoftQuestions int
	HardQuestions int
}

// PlanLimits maps a plan to its exact question counts.
func PlanLimits(plan Plan) Limits {
	if plan == PlanPaid {
		return Limits{SoftQuestions: 5, HardQuestions: 5}
	}
	return Limits{SoftQuestions: 2, HardQuestions: 2}
}

// Caps holds per-field character limits, counted in runes.
type Caps struct {
	Summary  int
	ListItem int
	RawReply int
}

// maxAssessmentItems bounds the strengths and gaps lists, which have no
// plan-driven exact count.
const maxAssessmentItems = 10
