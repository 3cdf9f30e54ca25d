package analysis

import "time"

// AnalysisResult is the guaranteed output schema. Every field is always
// present and within its size cap regardless of what the model returned.
type AnalysisResult struct {
	Summary         string            `json:"summary"`
	Strengths       []string          `json:"strengths"`
	Gaps            []string          `json:"gaps"`
	SoftQuestions   []string          `json:"softQuestions"`
	HardQuestions   []string          `json:"hardQuestions"`
	MatchPercentage int               `json:"matchPercentage"`
	WarningMismatch bool              `json:"warningMismatch"`
	Meta            map[string]string `json:"meta"`
}

// JDSummary is the posting summary returned by the analyze-jd operation.
type JDSummary struct {
	Summary      string   `json:"summary"`
	Requirements []string `json:"requirements"`
	Keywords     []string `json:"keywords"`
	Industry     string   `json:"industry,omitempty"`
}

// QuestionSet holds interview question lists sized per plan.
type QuestionSet struct {
	SoftQuestions []string `json:"softQuestions"`
	HardQuestions []string `json:"hardQuestions"`
}

// Record is one completed analysis persisted to the history store. It is an
// append-only audit entry; request-scoped values never outlive the request
// through it.
type Record struct {
	ID        string         `json:"id"`
	Plan      string         `json:"plan"`
	JobURLs   []string       `json:"jobUrls"`
	Industry  string         `json:"industry"`
	Result    AnalysisResult `json:"result"`
	Degraded  bool           `json:"degraded"`
	CreatedAt time.Time      `json:"createdAt"`
}
