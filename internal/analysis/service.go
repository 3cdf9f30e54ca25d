package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvmatch-backend/internal/fetch"
	"cvmatch-backend/internal/industry"
	"cvmatch-backend/internal/keywords"
	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/telemetry"
)

const topTermCount = 30

// Service orchestrates one analysis request: posting fetch fan-out, keyword
// overlap, prompt composition, generation, recovery and normalization. All
// values it produces are request-scoped; the history repo only receives an
// audit copy.
type Service struct {
	llm         llm.Client
	fetcher     *fetch.Fetcher
	repo        Repo
	model       string
	maxTokens   int
	caps        Caps
	combinedCap int
}

// NewService wires a Service from configuration. client may be nil when no
// API key is configured; LLM-backed operations then fail fast.
func NewService(cfg config.Config, client llm.Client, fetcher *fetch.Fetcher, repo Repo) *Service {
	return &Service{
		llm:       client,
		fetcher:   fetcher,
		repo:      repo,
		model:     cfg.LLMModel,
		maxTokens: cfg.LLMMaxTokens,
		caps: Caps{
			Summary:  cfg.SummaryCap,
			ListItem: cfg.ListItemCap,
			RawReply: cfg.RawReplyCap,
		},
		combinedCap: cfg.CombinedTextCap,
	}
}

// ErrLLMNotConfigured is returned when generation is requested without a
// configured provider.
var ErrLLMNotConfigured = errors.New("llm not configured")

// LLMConfigured reports whether a generation client is wired.
func (s *Service) LLMConfigured() bool {
	return s.llm != nil
}

// AnalyzeParams are the inputs of one full CV analysis.
type AnalyzeParams struct {
	CVText           string
	JobURLs          []string
	Plan             Plan
	AdditionalText   string
	SelectedIndustry string
}

// Analyze runs the full pipeline. Posting fetch failures degrade to sentinel
// text and an unparsable model reply degrades to the placeholder result; only
// generation failures propagate as errors.
func (s *Service) Analyze(ctx context.Context, params AnalyzeParams) (AnalysisResult, error) {
	if s.llm == nil {
		return AnalysisResult{}, ErrLLMNotConfigured
	}
	if len(params.JobURLs) == 0 {
		return AnalysisResult{}, fmt.Errorf("%w: at least one job url is required", ErrValidation)
	}
	if strings.TrimSpace(params.CVText) == "" {
		return AnalysisResult{}, fmt.Errorf("%w: cv text is empty", ErrValidation)
	}

	postings := s.fetcher.FetchAll(ctx, params.JobURLs)
	combined := fetch.CombineText(postings, s.combinedCap)

	overlap := keywords.Jaccard(
		keywords.TopTerms(params.CVText, topTermCount),
		keywords.TopTerms(combined, topTermCount),
	)

	detected := strings.TrimSpace(params.SelectedIndustry)
	if detected == "" {
		detected = industry.Detect(combined)
	}

	limits := PlanLimits(params.Plan)
	system, user := BuildAnalysisPrompt(PromptInput{
		CVText:         params.CVText,
		PostingText:    combined,
		AdditionalText: params.AdditionalText,
		Industry:       detected,
		Limits:         limits,
		Caps:           s.caps,
	})

	raw, err := s.llm.Generate(ctx, llm.GenerateRequest{
		System:    system,
		Prompt:    user,
		MaxTokens: s.maxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return AnalysisResult{}, err
	}

	analysisID := uuid.NewString()
	meta := map[string]string{
		"analysis_id": analysisID,
		"model":       s.model,
		"plan":        string(params.Plan),
		"industry":    detected,
		"overlap":     fmt.Sprintf("%.2f", overlap),
		"postings":    fmt.Sprintf("%d/%d", countOK(postings), len(postings)),
	}

	var result AnalysisResult
	degraded := false
	value, err := Recover(raw)
	if err != nil {
		var unparsable *UnparsableReplyError
		if !errors.As(err, &unparsable) {
			return AnalysisResult{}, err
		}
		telemetry.Warn("analysis.reply.unparsable", map[string]any{
			"model":    s.model,
			"raw_len":  len(raw),
			"raw_head": capRunes(raw, 120),
		})
		result = Degraded(unparsable.Raw, s.caps, meta)
		degraded = true
	} else {
		result = Normalize(NormalizeInput{
			Value:   value,
			Limits:  limits,
			Caps:    s.caps,
			Overlap: overlap,
			Meta:    meta,
		})
	}

	s.record(ctx, analysisID, params, detected, result, degraded)
	return result, nil
}

// SummarizeJD fetches postings and returns an LLM-backed summary of them.
func (s *Service) SummarizeJD(ctx context.Context, jobURLs []string) (JDSummary, error) {
	if s.llm == nil {
		return JDSummary{}, ErrLLMNotConfigured
	}
	if len(jobURLs) == 0 {
		return JDSummary{}, fmt.Errorf("%w: at least one job url is required", ErrValidation)
	}

	postings := s.fetcher.FetchAll(ctx, jobURLs)
	combined := fetch.CombineText(postings, s.combinedCap)

	system, user := BuildJDSummaryPrompt(PromptInput{PostingText: combined, Caps: s.caps})
	raw, err := s.llm.Generate(ctx, llm.GenerateRequest{
		System:    system,
		Prompt:    user,
		MaxTokens: s.maxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return JDSummary{}, err
	}

	value, _ := Recover(raw)
	root := asMap(value)

	summary := JDSummary{
		Summary:      ClampText(firstString(root["podsumowanie"], root["summary"]), s.caps.Summary),
		Requirements: normalizeList(firstList(root["wymagania"], root["requirements"]), s.caps.ListItem, maxAssessmentItems),
		Keywords:     normalizeList(firstList(root["slowa_kluczowe"], root["keywords"]), s.caps.ListItem, maxAssessmentItems),
		Industry:     industry.Detect(combined),
	}
	if len(summary.Keywords) == 0 {
		summary.Keywords = keywords.TopTerms(combined, 10)
	}
	return summary, nil
}

// GenerateQuestions returns interview question lists sized per plan. An
// unparsable reply degrades to empty lists rather than an error.
func (s *Service) GenerateQuestions(ctx context.Context, jobURLs []string, plan Plan, selectedIndustry string) (QuestionSet, error) {
	if s.llm == nil {
		return QuestionSet{}, ErrLLMNotConfigured
	}
	if len(jobURLs) == 0 {
		return QuestionSet{}, fmt.Errorf("%w: at least one job url is required", ErrValidation)
	}

	postings := s.fetcher.FetchAll(ctx, jobURLs)
	combined := fetch.CombineText(postings, s.combinedCap)

	limits := PlanLimits(plan)
	system, user := BuildQuestionsPrompt(PromptInput{
		PostingText: combined,
		Industry:    selectedIndustry,
		Limits:      limits,
		Caps:        s.caps,
	})
	raw, err := s.llm.Generate(ctx, llm.GenerateRequest{
		System:    system,
		Prompt:    user,
		MaxTokens: s.maxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return QuestionSet{}, err
	}

	value, _ := Recover(raw)
	result := Normalize(NormalizeInput{
		Value:  value,
		Limits: limits,
		Caps:   s.caps,
	})
	return QuestionSet{
		SoftQuestions: result.SoftQuestions,
		HardQuestions: result.HardQuestions,
	}, nil
}

// DetectIndustry fetches postings and classifies them against the fixed
// category table. The postings are merged first, so the earliest category in
// priority order wins across all of them.
func (s *Service) DetectIndustry(ctx context.Context, jobURLs []string) (string, error) {
	if len(jobURLs) == 0 {
		return "", fmt.Errorf("%w: at least one job url is required", ErrValidation)
	}
	postings := s.fetcher.FetchAll(ctx, jobURLs)
	combined := fetch.CombineText(postings, s.combinedCap)
	return industry.Detect(combined), nil
}

// GetRecord returns one history entry.
func (s *Service) GetRecord(ctx context.Context, id string) (Record, error) {
	if s.repo == nil {
		return Record{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListRecords returns history entries, newest first.
func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	if s.repo == nil {
		return []Record{}, nil
	}
	return s.repo.List(ctx, limit, offset)
}

// record persists an audit entry; failures are logged, never surfaced.
func (s *Service) record(ctx context.Context, id string, params AnalyzeParams, detected string, result AnalysisResult, degraded bool) {
	if s.repo == nil {
		return
	}
	entry := Record{
		ID:        id,
		Plan:      string(params.Plan),
		JobURLs:   params.JobURLs,
		Industry:  detected,
		Result:    result,
		Degraded:  degraded,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		telemetry.Error("analysis.record.failed", map[string]any{
			"analysis_id": entry.ID,
			"err":         err.Error(),
		})
	}
}

func countOK(postings []fetch.Posting) int {
	n := 0
	for _, p := range postings {
		if p.OK {
			n++
		}
	}
	return n
}
