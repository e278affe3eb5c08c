// Package genai is a lightweight facade over the Gemini generateContent API
// for image generation. When no API key is configured it can fall back to
// deterministic synthetic assets so the worker stays operational in local and
// CI environments.
package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scenesmith/internal/domain"
	"scenesmith/internal/infra"
)

// Options controls how the generation client is configured. KeySource, when
// set, is consulted on every call so a credential stored while the process
// runs takes effect without a restart; APIKey is the static fallback.
type Options struct {
	APIKey         string
	KeySource      func(ctx context.Context) (string, error)
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	AllowSynthetic bool
}

// Client issues one generateContent call per image. The external API is rate-
// and concurrency-limited, so callers must serialize their calls; the client
// itself holds no queue.
type Client struct {
	keySource      func(ctx context.Context) (string, error)
	baseURL        string
	model          string
	httpClient     *http.Client
	logger         *infra.Logger
	allowSynthetic bool
}

// ErrNoCredential is returned when neither an API key nor the synthetic
// fallback is available.
var ErrNoCredential = errors.New("genai: api key not configured")

func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	keySource := opts.KeySource
	if keySource == nil {
		static := strings.TrimSpace(opts.APIKey)
		keySource = func(context.Context) (string, error) { return static, nil }
	}
	return &Client{
		keySource:      keySource,
		baseURL:        baseURL,
		model:          model,
		httpClient:     httpClient,
		logger:         opts.Logger,
		allowSynthetic: opts.AllowSynthetic,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// ImageRequest describes one image to generate.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	RequestID      string
	Seed           int64
}

// ImageAsset is the normalized representation of one generated image.
type ImageAsset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generationConfig struct {
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// GenerateImage performs a single generation call and blocks until the API
// responds. Provider errors, including rate-limit and authentication
// failures, are returned with the upstream message intact so the queue can
// surface them verbatim.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (ImageAsset, error) {
	apiKey, err := c.keySource(ctx)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("genai: read credential: %w", err)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		if !c.allowSynthetic {
			return ImageAsset{}, ErrNoCredential
		}
		return c.syntheticImage(req), nil
	}

	payload := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPromptText(req)}},
		}},
		GenerationConfig: &generationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"IMAGE"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("genai: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ImageAsset{}, fmt.Errorf("genai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("genai: call api: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return ImageAsset{}, fmt.Errorf("genai: read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return ImageAsset{}, apiError(res.StatusCode, raw)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ImageAsset{}, fmt.Errorf("genai: decode response: %w", err)
	}
	for _, candidate := range parsed.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return ImageAsset{}, fmt.Errorf("genai: decode image data: %w", err)
			}
			mime := p.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			if c.logger != nil {
				c.logger.Debug().Str("request_id", req.RequestID).Int("bytes", len(data)).Msg("genai: image received")
			}
			return ImageAsset{Data: data, MIME: mime}, nil
		}
	}
	return ImageAsset{}, fmt.Errorf("genai: response contained no image data")
}

func buildPromptText(req ImageRequest) string {
	var b strings.Builder
	b.WriteString(req.Prompt)
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		b.WriteString("\n\nAvoid: ")
		b.WriteString(neg)
	}
	return b.String()
}

// providerError keeps the upstream message verbatim while letting callers
// classify it with errors.Is(err, domain.ErrProviderFailure).
type providerError struct {
	message string
}

func (e *providerError) Error() string { return e.message }

func (e *providerError) Is(target error) bool { return target == domain.ErrProviderFailure }

func apiError(status int, raw []byte) error {
	var parsed apiErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return &providerError{message: fmt.Sprintf("generation api: %s", parsed.Error.Message)}
	}
	return &providerError{message: fmt.Sprintf("generation api: http %d", status)}
}

// syntheticImage renders a deterministic placeholder PNG derived from the
// prompt and seed, matching real asset dimensions closely enough for UI work.
func (c *Client) syntheticImage(req ImageRequest) ImageAsset {
	const size = 512
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", req.Prompt, req.Seed)))
	base := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}
	accent := color.RGBA{R: sum[3], G: sum[4], B: sum[5], A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: base}, image.Point{}, draw.Src)
	band := image.Rect(0, size/3, size, 2*size/3)
	draw.Draw(img, band, &image.Uniform{C: accent}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	if c.logger != nil {
		c.logger.Debug().Str("request_id", req.RequestID).Msg("genai: synthetic image generated")
	}
	return ImageAsset{Data: buf.Bytes(), MIME: "image/png", Width: size, Height: size}
}
