package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cvmatch-backend/internal/shared/telemetry"
)

// FetchFailedText is the sentinel substituted for a posting whose fetch or
// extraction failed. Fetch failure is never fatal to the overall request.
const FetchFailedText = "Nie udało się pobrać treści ogłoszenia."

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes = 2 << 20
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Posting is one job posting reduced to readable text.
type Posting struct {
	URL  string
	Text string
	OK   bool
}

// Fetcher retrieves job postings and reduces them to main-content text.
type Fetcher struct {
	client  *http.Client
	maxText int
}

// New constructs a Fetcher with a bounded per-request timeout and a
// per-posting text cap in runes.
func New(timeout time.Duration, maxText int) *Fetcher {
	if timeout <= 0 {
		timeout = 9 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		maxText: maxText,
	}
}

// Fetch retrieves a single posting. On any failure it returns a Posting with
// the sentinel text and OK=false rather than an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) Posting {
	text, err := f.fetchText(ctx, url)
	if err != nil {
		telemetry.Warn("posting.fetch.failed", map[string]any{
			"url": url,
			"err": err.Error(),
		})
		return Posting{URL: url, Text: FetchFailedText, OK: false}
	}
	return Posting{URL: url, Text: text, OK: true}
}

// FetchAll fans out one goroutine per URL and waits for all of them.
// Results preserve input order; individual failures are isolated.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Posting {
	postings := make([]Posting, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			postings[i] = f.Fetch(ctx, url)
		}(i, url)
	}
	wg.Wait()
	return postings
}

// CombineText joins posting texts for prompt assembly, clamped to maxChars
// runes. When every fetch failed the result is the bare sentinel string.
func CombineText(postings []Posting, maxChars int) string {
	anyOK := false
	for _, p := range postings {
		if p.OK {
			anyOK = true
			break
		}
	}
	if !anyOK {
		return FetchFailedText
	}

	var b strings.Builder
	for i, p := range postings {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&b, "Ogłoszenie %d (%s):\n%s", i+1, p.URL, p.Text)
	}
	combined := b.String()
	runes := []rune(combined)
	if maxChars > 0 && len(runes) > maxChars {
		combined = string(runes[:maxChars]) + "…"
	}
	return combined
}

func (f *Fetcher) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	text := Readable(string(body))
	if text == "" {
		return "", fmt.Errorf("no readable content")
	}

	runes := []rune(text)
	if f.maxText > 0 && len(runes) > f.maxText {
		text = string(runes[:f.maxText]) + "…"
	}
	return text, nil
}

// Readable reduces an HTML page to its main article-like text: navigation,
// ads and boilerplate stripped, block texts joined, whitespace collapsed.
func Readable(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(stripTags(html))
	}
	doc.Find("script, style, nav, header, footer, aside, iframe, noscript, form").Remove()
	doc.Find(".menu, .navigation, .social, .banner, .ads, .cookie, .popup, .sidebar").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n")
	}

	return collapse(doc.Find("body").Text())
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	return tagRe.ReplaceAllString(html, " ")
}

func collapse(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
