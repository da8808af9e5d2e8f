// internal/infra/gemini/client.go
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eduquery/internal/domain/analysis"
	"eduquery/internal/infra/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	DefaultModel     = "gemini-3-flash-preview"
	DefaultTimeout   = 30 * time.Second
	defaultCacheSize = 128
	defaultCacheTTL  = 10 * time.Minute
)

// Config holds configuration for the Gemini analysis client
type Config struct {
	APIKey    string // Empty disables analysis
	BaseURL   string // Empty uses the SDK's Gemini API endpoint
	Model     string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// Client implements analysis.Analyzer on top of the Gemini API through google.golang.org/genai.
type Client struct {
	models *genai.Models // nil when analysis is disabled
	model  string
	cache  *expirable.LRU[string, analysis.Result]
	logger *logrus.Entry
}

func NewClient(cfg Config, logger *logrus.Entry) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	c := &Client{
		model:  cfg.Model,
		cache:  expirable.NewLRU[string, analysis.Result](cfg.CacheSize, nil, cfg.CacheTTL),
		logger: logger,
	}

	if cfg.APIKey == "" {
		logger.Warn("No Gemini API key configured; draft analysis is disabled")
		return c
	}

	sdk, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		logger.WithError(err).Error("Could not create Gemini client; draft analysis is disabled")
		return c
	}
	c.models = sdk.Models
	return c
}

// Enabled reports whether analysis requests will reach the provider.
func (c *Client) Enabled() bool {
	return c.models != nil
}

// Analyze asks the model for a structured review of the draft.
// Every failure is logged and reported as nil so the caller falls back to raw input.
func (c *Client) Analyze(ctx context.Context, title, description string) *analysis.Result {
	if !c.Enabled() {
		metrics.AnalysisRequests.WithLabelValues("disabled").Inc()
		return nil
	}

	key := title + "\x00" + description
	if cached, ok := c.cache.Get(key); ok {
		metrics.AnalysisRequests.WithLabelValues("cached").Inc()
		c.logger.Debug("Draft analysis served from cache")
		return &cached
	}

	result, err := c.generate(ctx, title, description)
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues("failed").Inc()
		c.logger.WithError(err).WithField("model", c.model).Error("Gemini analysis failed")
		return nil
	}

	metrics.AnalysisRequests.WithLabelValues("ok").Inc()
	c.cache.Add(key, *result)
	c.logger.WithFields(logrus.Fields{
		"subject": result.SuggestedSubject,
		"clarity": result.ClarityScore,
		"urgency": result.UrgencyAssessment,
	}).Info("Draft analysis completed")
	return result
}

func (c *Client) generate(ctx context.Context, title, description string) (*analysis.Result, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(analysisPrompt(title, description)), analysisConfig())
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text candidate")
	}

	var result analysis.Result
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis JSON: %w", err)
	}
	if err := analysis.Validate(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite the JSON mime type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
