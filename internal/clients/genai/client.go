// Package genai is a hand-rolled client for the Gemini REST API. Only
// the two generation calls the services need are implemented.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// Client is the generative-AI surface the services depend on. Callers
// must treat every error as "use the rule-based fallback instead".
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	// Model fallback: when the configured model is gone, remember the
	// replacement so every call does not re-list.
	fallbackMu    sync.RWMutex
	fallbackModel string
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &client{
		log:        log.With("service", "GenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{Contents: []content{{Parts: []contentPart{{Text: prompt}}}}}
	return c.generate(ctx, req)
}

func (c *client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image: %w", apperr.ErrInvalidArgument)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	req := generateRequest{Contents: []content{{Parts: []contentPart{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}}}}
	return c.generate(ctx, req)
}

func (c *client) generate(ctx context.Context, req generateRequest) (string, error) {
	text, err := c.generateWithModel(ctx, c.activeModel(), req)
	if err == nil {
		return text, nil
	}
	if !isModelUnavailable(err) {
		return "", err
	}

	replacement, lerr := c.pickAvailableModel(ctx)
	if lerr != nil {
		return "", fmt.Errorf("model %s unavailable and discovery failed: %w", c.activeModel(), lerr)
	}
	c.log.Warn("configured model unavailable, switching", "from", c.activeModel(), "to", replacement)
	c.setFallbackModel(replacement)
	return c.generateWithModel(ctx, replacement, req)
}

func (c *client) generateWithModel(ctx context.Context, model string, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", &requestError{status: resp.StatusCode, apiStatus: decoded.Error.Status, message: decoded.Error.Message}
		}
		return "", &requestError{status: resp.StatusCode, message: strings.TrimSpace(string(raw))}
	}

	var b strings.Builder
	for _, cand := range decoded.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("empty completion from %s", model)
	}
	return text, nil
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}

func (c *client) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, &requestError{status: resp.StatusCode, message: strings.TrimSpace(string(raw))}
	}
	var decoded listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	var names []string
	for _, m := range decoded.Models {
		if !supportsGenerate(m.SupportedGenerationMethods) {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (c *client) pickAvailableModel(ctx context.Context) (string, error) {
	names, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no generation-capable models available")
	}
	// Prefer a sibling of the configured family before an arbitrary model.
	family := strings.SplitN(c.model, "-", 3)
	if len(family) >= 2 {
		prefix := family[0] + "-" + family[1]
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				return name, nil
			}
		}
	}
	return names[0], nil
}

func (c *client) activeModel() string {
	c.fallbackMu.RLock()
	defer c.fallbackMu.RUnlock()
	if c.fallbackModel != "" {
		return c.fallbackModel
	}
	return c.model
}

func (c *client) setFallbackModel(model string) {
	c.fallbackMu.Lock()
	c.fallbackModel = model
	c.fallbackMu.Unlock()
}

func supportsGenerate(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}

type requestError struct {
	status    int
	apiStatus string
	message   string
}

func (e *requestError) Error() string {
	if e.apiStatus != "" {
		return fmt.Sprintf("gemini api error %d (%s): %s", e.status, e.apiStatus, e.message)
	}
	return fmt.Sprintf("gemini api error %d: %s", e.status, e.message)
}

func isModelUnavailable(err error) bool {
	re, ok := err.(*requestError)
	if !ok {
		return false
	}
	if re.status == http.StatusNotFound {
		return true
	}
	return re.status == http.StatusBadRequest && strings.Contains(strings.ToLower(re.message), "model")
}
