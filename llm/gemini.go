package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caasmo/authrelay/config"
)

const defaultRequestTimeout = 2 * time.Minute

// Gemini calls the Google generative language REST API. Streaming uses
// the streamGenerateContent endpoint with SSE framing.
type Gemini struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewGemini builds a client from configuration. The http client timeout
// covers the whole response including the stream.
func NewGemini(cfg config.Llm) *Gemini {
	timeout := cfg.RequestTimeout.Duration
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Gemini{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.ApiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

var _ Generator = (*Gemini)(nil)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// geminiRole maps our message roles to the API's. The API calls the
// assistant side "model".
func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func (g *Gemini) buildRequest(system string, messages []Message) geminiRequest {
	req := geminiRequest{}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range messages {
		req.Contents = append(req.Contents, geminiContent{
			Role:  geminiRole(m.Role),
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return req
}

func (g *Gemini) post(ctx context.Context, url string, body geminiRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, detail)
	}

	return resp, nil
}

// StreamText streams a reply for the given history. Chunks are passed to
// fn in arrival order; the first error from fn or the wire aborts.
func (g *Gemini) StreamText(ctx context.Context, system string, messages []Message, fn func(chunk string) error) error {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.endpoint, g.model)

	resp, err := g.post(ctx, url, g.buildRequest(system, messages))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, found := strings.CutPrefix(line, "data:")
		if !found {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to decode gemini stream event: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("gemini stream error %d: %s", chunk.Error.Code, chunk.Error.Message)
		}

		for _, candidate := range chunk.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text == "" {
					continue
				}
				if err := fn(part.Text); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gemini stream read failed: %w", err)
	}

	return nil
}

// GenerateText returns a single complete response for a prompt.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)

	resp, err := g.post(ctx, url, g.buildRequest("", []Message{{Role: RoleUser, Content: prompt}}))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}

	var sb strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text")
	}

	return strings.TrimSpace(sb.String()), nil
}
