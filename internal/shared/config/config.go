package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is built once at startup and
// passed by reference into each component; there are no ambient singletons.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	// LLM
	OpenAIAPIKey      string
	LLMModel          string
	LLMMaxTokens      int
	GenerationTimeout time.Duration

	// Posting fetch
	FetchTimeout time.Duration

	// Size caps, counted in runes
	CVTextCap       int
	PostingTextCap  int
	CombinedTextCap int
	SummaryCap      int
	ListItemCap     int
	RawReplyCap     int

	// Uploads
	ScratchDir     string
	MaxUploadBytes int64

	// Optional analysis history store
	DatabaseURL string

	// Contact form mailer
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	ContactFrom string
	ContactTo   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	apiKey := os.Getenv("OPENAI_API_KEY")
	if env == "production" && apiKey == "" {
		log.Printf("OPENAI_API_KEY is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		OpenAIAPIKey:      apiKey,
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 2048),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),

		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 9*time.Second),

		CVTextCap:       getEnvInt("CV_TEXT_CAP", 8000),
		PostingTextCap:  getEnvInt("POSTING_TEXT_CAP", 6000),
		CombinedTextCap: getEnvInt("COMBINED_TEXT_CAP", 12000),
		SummaryCap:      getEnvInt("SUMMARY_CAP", 600),
		ListItemCap:     getEnvInt("LIST_ITEM_CAP", 220),
		RawReplyCap:     getEnvInt("RAW_REPLY_CAP", 500),

		ScratchDir:     getEnv("SCRATCH_DIR", os.TempDir()),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		ContactFrom: getEnv("CONTACT_FROM", ""),
		ContactTo:   getEnv("CONTACT_TO", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using default %d", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using default %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
