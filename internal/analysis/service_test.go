package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cvmatch-backend/internal/fetch"
	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/config"
)

// stubLLM returns canned replies and records the requests it saw.
type stubLLM struct {
	reply    string
	err      error
	requests []llm.GenerateRequest
}

func (s *stubLLM) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testConfig() config.Config {
	return config.Config{
		LLMModel:        "gpt-4o-mini",
		LLMMaxTokens:    2048,
		SummaryCap:      600,
		ListItemCap:     220,
		RawReplyCap:     500,
		CombinedTextCap: 12000,
	}
}

func postingServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + body + "</p></body></html>"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, client llm.Client) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := NewService(testConfig(), client, fetch.New(2*time.Second, 6000), repo)
	return svc, repo
}

const cvText = "Programista Go z pięcioletnim doświadczeniem. Docker, SQL, mikrousługi, Kubernetes."

func TestAnalyzeFullPipeline(t *testing.T) {
	srv := postingServer(t, "Poszukujemy programisty Go. Wymagania: Docker, SQL, mikrousługi.")
	stub := &stubLLM{reply: "```json\n" + `{
		"podsumowanie": "Kandydat dobrze pasuje do roli.",
		"dopasowanie": {
			"mocne_strony": ["Go", "Docker"],
			"obszary_do_poprawy": ["Terraform"]
		},
		"pytania_miekkie": ["p1", "p2", "p3"],
		"pytania_techniczne": ["t1", "t2", "t3"]
	}` + "\n```"}

	svc, repo := newTestService(t, stub)
	result, err := svc.Analyze(context.Background(), AnalyzeParams{
		CVText:  cvText,
		JobURLs: []string{srv.URL},
		Plan:    PlanFree,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Summary != "Kandydat dobrze pasuje do roli." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.SoftQuestions) != 2 || len(result.HardQuestions) != 2 {
		t.Errorf("questions = %d/%d, want 2/2 for free plan", len(result.SoftQuestions), len(result.HardQuestions))
	}
	// 2 strengths vs 1 gap rounds to 67, possibly capped by overlap.
	if result.MatchPercentage != 67 && result.MatchPercentage != 50 && result.MatchPercentage != 35 {
		t.Errorf("MatchPercentage = %d", result.MatchPercentage)
	}
	if result.Meta["model"] != "gpt-4o-mini" || result.Meta["plan"] != "free" {
		t.Errorf("meta = %v", result.Meta)
	}
	if result.Meta["postings"] != "1/1" {
		t.Errorf("meta postings = %q", result.Meta["postings"])
	}
	if result.Meta["industry"] != "IT" {
		t.Errorf("meta industry = %q", result.Meta["industry"])
	}

	// Prompt must carry both the CV and the fetched posting text.
	if len(stub.requests) != 1 {
		t.Fatalf("llm calls = %d", len(stub.requests))
	}
	req := stub.requests[0]
	if !req.JSONMode {
		t.Error("structured mode not requested")
	}
	if !strings.Contains(req.Prompt, "pięcioletnim doświadczeniem") {
		t.Error("prompt missing cv text")
	}
	if !strings.Contains(req.Prompt, "Poszukujemy programisty Go") {
		t.Error("prompt missing posting text")
	}

	records, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Degraded {
		t.Errorf("records = %+v", records)
	}
	// The ID handed back in meta is the one the history store keeps.
	if result.Meta["analysis_id"] == "" || records[0].ID != result.Meta["analysis_id"] {
		t.Errorf("analysis_id = %q, record id = %q", result.Meta["analysis_id"], records[0].ID)
	}
}

func TestAnalyzeDegradedOnUnparsableReply(t *testing.T) {
	srv := postingServer(t, "Oferta pracy dla programisty Go.")
	stub := &stubLLM{reply: "Przepraszam, nie mogę wygenerować odpowiedzi w tym formacie."}

	svc, repo := newTestService(t, stub)
	result, err := svc.Analyze(context.Background(), AnalyzeParams{
		CVText:  cvText,
		JobURLs: []string{srv.URL},
		Plan:    PlanPaid,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v, degraded result expected instead", err)
	}

	if result.Summary != degradedSummary {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Meta["degraded"] != "true" {
		t.Errorf("meta degraded = %q", result.Meta["degraded"])
	}
	if !strings.Contains(result.Meta["raw_reply"], "Przepraszam") {
		t.Errorf("raw_reply = %q", result.Meta["raw_reply"])
	}

	records, _ := repo.List(context.Background(), 10, 0)
	if len(records) != 1 || !records[0].Degraded {
		t.Errorf("records = %+v", records)
	}
}

func TestAnalyzeAllFetchesFailed(t *testing.T) {
	stub := &stubLLM{reply: `{"podsumowanie": "ok", "dopasowanie": {"mocne_strony": ["a"], "obszary_do_poprawy": []}}`}
	svc, _ := newTestService(t, stub)

	result, err := svc.Analyze(context.Background(), AnalyzeParams{
		CVText:  cvText,
		JobURLs: []string{"http://127.0.0.1:1/a", "http://127.0.0.1:1/b", "http://127.0.0.1:1/c"},
		Plan:    PlanFree,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v, fetch failure must not be fatal", err)
	}
	if result.Summary == "" {
		t.Error("result not populated")
	}
	if !strings.Contains(stub.requests[0].Prompt, fetch.FetchFailedText) {
		t.Error("prompt missing fetch-failure sentinel")
	}
	if result.Meta["postings"] != "0/3" {
		t.Errorf("meta postings = %q", result.Meta["postings"])
	}
}

func TestAnalyzeValidation(t *testing.T) {
	svc, _ := newTestService(t, &stubLLM{reply: "{}"})

	_, err := svc.Analyze(context.Background(), AnalyzeParams{CVText: cvText})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("no urls: error = %v", err)
	}

	_, err = svc.Analyze(context.Background(), AnalyzeParams{JobURLs: []string{"http://x"}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("no cv: error = %v", err)
	}
}

func TestAnalyzeNotConfigured(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Analyze(context.Background(), AnalyzeParams{CVText: cvText, JobURLs: []string{"http://x"}})
	if !errors.Is(err, ErrLLMNotConfigured) {
		t.Errorf("error = %v", err)
	}
	if svc.LLMConfigured() {
		t.Error("LLMConfigured() = true")
	}
}

func TestAnalyzeGenerationErrorPropagates(t *testing.T) {
	srv := postingServer(t, "Oferta pracy.")
	svc, repo := newTestService(t, &stubLLM{err: llm.ErrGenerationTimeout})

	_, err := svc.Analyze(context.Background(), AnalyzeParams{
		CVText:  cvText,
		JobURLs: []string{srv.URL},
	})
	if !errors.Is(err, llm.ErrGenerationTimeout) {
		t.Errorf("error = %v", err)
	}
	if records, _ := repo.List(context.Background(), 10, 0); len(records) != 0 {
		t.Errorf("failed analysis must not be recorded, got %d", len(records))
	}
}

func TestAnalyzeSelectedIndustryWins(t *testing.T) {
	srv := postingServer(t, "Poszukujemy programisty Go.")
	stub := &stubLLM{reply: `{"podsumowanie": "ok"}`}
	svc, _ := newTestService(t, stub)

	result, err := svc.Analyze(context.Background(), AnalyzeParams{
		CVText:           cvText,
		JobURLs:          []string{srv.URL},
		SelectedIndustry: "Finanse",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Meta["industry"] != "Finanse" {
		t.Errorf("meta industry = %q, want user selection", result.Meta["industry"])
	}
	if !strings.Contains(stub.requests[0].Prompt, "Finanse") {
		t.Error("prompt missing selected industry")
	}
}

func TestGenerateQuestions(t *testing.T) {
	srv := postingServer(t, "Poszukujemy handlowca B2B.")
	stub := &stubLLM{reply: `{"pytania_miekkie": ["p1", "p2", "p3", "p4", "p5", "p6"], "pytania_techniczne": ["t1", "t2", "t3", "t4", "t5", "t6"]}`}
	svc, _ := newTestService(t, stub)

	questions, err := svc.GenerateQuestions(context.Background(), []string{srv.URL}, PlanPaid, "")
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	if len(questions.SoftQuestions) != 5 || len(questions.HardQuestions) != 5 {
		t.Errorf("questions = %d/%d, want 5/5 for paid plan", len(questions.SoftQuestions), len(questions.HardQuestions))
	}
}

func TestGenerateQuestionsUnparsableDegrades(t *testing.T) {
	srv := postingServer(t, "Oferta.")
	svc, _ := newTestService(t, &stubLLM{reply: "nie dam rady"})

	questions, err := svc.GenerateQuestions(context.Background(), []string{srv.URL}, PlanFree, "")
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	if len(questions.SoftQuestions) != 0 || len(questions.HardQuestions) != 0 {
		t.Errorf("questions = %+v, want empty lists", questions)
	}
}

func TestSummarizeJD(t *testing.T) {
	srv := postingServer(t, "Poszukujemy programisty Python do zespołu danych.")
	stub := &stubLLM{reply: `{"podsumowanie": "Rola w zespole danych.", "wymagania": ["Python"], "slowa_kluczowe": ["python", "dane"]}`}
	svc, _ := newTestService(t, stub)

	summary, err := svc.SummarizeJD(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("SummarizeJD() error = %v", err)
	}
	if summary.Summary != "Rola w zespole danych." {
		t.Errorf("Summary = %q", summary.Summary)
	}
	if len(summary.Requirements) != 1 || len(summary.Keywords) != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Industry != "IT" {
		t.Errorf("Industry = %q", summary.Industry)
	}
}

func TestSummarizeJDKeywordFallback(t *testing.T) {
	srv := postingServer(t, "Poszukujemy programisty Python. Python, dane, Python.")
	svc, _ := newTestService(t, &stubLLM{reply: `{"podsumowanie": "ok"}`})

	summary, err := svc.SummarizeJD(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("SummarizeJD() error = %v", err)
	}
	if len(summary.Keywords) == 0 {
		t.Error("expected frequency-based keyword fallback")
	}
}

func TestDetectIndustryOperation(t *testing.T) {
	srv := postingServer(t, "Rekrutacja i onboarding nowych pracowników, kadry.")
	svc, _ := newTestService(t, nil)

	got, err := svc.DetectIndustry(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("DetectIndustry() error = %v", err)
	}
	if got != "HR" {
		t.Errorf("DetectIndustry() = %q", got)
	}

	if _, err := svc.DetectIndustry(context.Background(), nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty urls: error = %v", err)
	}
}

func TestRecordLookup(t *testing.T) {
	srv := postingServer(t, "Oferta dla programisty Go.")
	svc, repo := newTestService(t, &stubLLM{reply: `{"podsumowanie": "ok"}`})

	if _, err := svc.Analyze(context.Background(), AnalyzeParams{CVText: cvText, JobURLs: []string{srv.URL}}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	records, _ := repo.List(context.Background(), 10, 0)
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	got, err := svc.GetRecord(context.Background(), records[0].ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.ID != records[0].ID {
		t.Errorf("GetRecord() = %+v", got)
	}

	if _, err := svc.GetRecord(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: error = %v", err)
	}
}
