package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cvmatch-backend/internal/extract"
	"cvmatch-backend/internal/industry"
	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server/respond"
)

// Handler exposes the analysis HTTP surface.
type Handler struct {
	svc        *Service
	scratchDir string
	maxUpload  int64
	cvTextCap  int
}

// NewHandler constructs the analysis handler.
func NewHandler(cfg config.Config, svc *Service) *Handler {
	return &Handler{
		svc:        svc,
		scratchDir: cfg.ScratchDir,
		maxUpload:  cfg.MaxUploadBytes,
		cvTextCap:  cfg.CVTextCap,
	}
}

// RegisterRoutes mounts the analysis endpoints on the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/analyze", h.Analyze)
	r.POST("/analyze-jd", h.AnalyzeJD)
	r.POST("/generate-questions", h.GenerateQuestions)
	r.POST("/detect-industry", h.DetectIndustry)
	r.GET("/analyses", h.ListAnalyses)
	r.GET("/analyses/:id", h.GetAnalysis)
}

// Analyze handles the multipart CV analysis request.
func (h *Handler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fileHeader, err := c.FormFile("cv")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondTooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "cv file is required", nil)
		return
	}
	if fileHeader.Size > h.maxUpload {
		h.respondTooLarge(c)
		return
	}

	jobURLs := parseJobURLs(c.PostForm("jobUrls"))
	if len(jobURLs) == 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "at least one job url is required", nil)
		return
	}

	plan := ParsePlan(c.PostForm("plan"))
	c.Set("plan", string(plan))
	selectedIndustry := strings.TrimSpace(c.PostForm("selectedIndustry"))
	if selectedIndustry != "" && !industry.Valid(selectedIndustry) {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unknown industry", gin.H{
			"allowed": industry.Names(),
		})
		return
	}

	data, err := h.readUpload(fileHeader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "could not read cv file", nil)
		return
	}

	doc, err := extract.FromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename, h.cvTextCap)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, ErrorCodeUnsupportedFormat, "only PDF and DOCX files are supported", nil)
		case errors.Is(err, extract.ErrExtractionFailed):
			respond.Error(c, http.StatusBadRequest, ErrorCodeExtractionFailed, "could not extract text from cv file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "cv processing failed", nil)
		}
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), AnalyzeParams{
		CVText:           doc.RawText,
		JobURLs:          jobURLs,
		Plan:             plan,
		AdditionalText:   strings.TrimSpace(c.PostForm("additionalDescription")),
		SelectedIndustry: selectedIndustry,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Set("analysisId", result.Meta["analysis_id"])

	respond.OK(c, gin.H{"status": "ok", "analysis": result})
}

type jobURLsRequest struct {
	JobURLs          []string `json:"jobUrls"`
	Plan             string   `json:"plan"`
	SelectedIndustry string   `json:"selectedIndustry"`
}

// AnalyzeJD summarizes one or more job postings.
func (h *Handler) AnalyzeJD(c *gin.Context) {
	var req jobURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if len(req.JobURLs) == 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "at least one job url is required", nil)
		return
	}

	summary, err := h.svc.SummarizeJD(c.Request.Context(), req.JobURLs)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "ok", "jd": summary})
}

// GenerateQuestions returns plan-sized interview question lists.
func (h *Handler) GenerateQuestions(c *gin.Context) {
	var req jobURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if len(req.JobURLs) == 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "at least one job url is required", nil)
		return
	}

	questions, err := h.svc.GenerateQuestions(c.Request.Context(), req.JobURLs, ParsePlan(req.Plan), strings.TrimSpace(req.SelectedIndustry))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "ok", "questions": questions})
}

// DetectIndustry classifies the fetched postings against the category table.
func (h *Handler) DetectIndustry(c *gin.Context) {
	var req jobURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if len(req.JobURLs) == 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "at least one job url is required", nil)
		return
	}

	detected, err := h.svc.DetectIndustry(c.Request.Context(), req.JobURLs)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "ok", "industry": detected})
}

// GetAnalysis returns one stored analysis record.
func (h *Handler) GetAnalysis(c *gin.Context) {
	record, err := h.svc.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "analysis not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "could not load analysis", nil)
		return
	}
	respond.OK(c, record)
}

// ListAnalyses returns stored analysis records, newest first.
func (h *Handler) ListAnalyses(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	records, err := h.svc.ListRecords(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "could not list analyses", nil)
		return
	}
	respond.OK(c, gin.H{"items": records, "count": len(records)})
}

func (h *Handler) respondTooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeValidation, "cv file too large", gin.H{
		"maxBytes": h.maxUpload,
	})
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrLLMNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, ErrorCodeGenerationFailed, "generation is not configured", nil)
	case errors.Is(err, llm.ErrGenerationTimeout):
		respond.Error(c, http.StatusGatewayTimeout, ErrorCodeGenerationTimeout, "model did not respond in time", nil)
	case errors.Is(err, llm.ErrGenerationFailed):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeGenerationFailed, "model request failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "analysis failed", nil)
	}
}

// readUpload spools the upload into the scratch dir so oversized or slow
// bodies never sit in memory twice, then reads it back.
func (h *Handler) readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	path := filepath.Join(h.scratchDir, "cv-"+uuid.NewString()+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, err
	}
	if err := dst.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// parseJobURLs accepts either a JSON array or a newline/comma separated list.
func parseJobURLs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err == nil {
			return trimNonEmpty(urls)
		}
	}

	split := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})
	return trimNonEmpty(split)
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return def
	}
	return val
}
