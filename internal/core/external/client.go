// Package external is the HTTP client for the matching/asset service that
// owns embeddings, match computation, QR codes and recap images.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Client calls the matching/asset service over JSON HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client with the given request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type embeddingRequest struct {
	UserID  string `json:"user_id"`
	Hobbies string `json:"hobbies"`
	About   string `json:"about,omitempty"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type computeRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

type computeResponse struct {
	Matches []domain.ComputedMatch `json:"matches"`
}

type qrResponse struct {
	QRURL string `json:"qr_url"`
}

type recapResponse struct {
	RecapURL string `json:"recap_url"`
}

// errorResponse is the service's error body
type errorResponse struct {
	Detail string `json:"detail"`
}

// GenerateEmbedding asks the service to embed and store the user's profile text
func (c *Client) GenerateEmbedding(ctx context.Context, userID, hobbies, about string) ([]float64, error) {
	var out embeddingResponse
	if err := c.post(ctx, "/api/embedding", embeddingRequest{UserID: userID, Hobbies: hobbies, About: about}, &out); err != nil {
		return nil, fmt.Errorf("generate embedding for %q: %w", userID, err)
	}
	return out.Embedding, nil
}

// ComputeMatches asks the service to score the user against the event's attendees
func (c *Client) ComputeMatches(ctx context.Context, userID, eventID string) ([]domain.ComputedMatch, error) {
	var out computeResponse
	if err := c.post(ctx, "/api/matches/compute", computeRequest{UserID: userID, EventID: eventID}, &out); err != nil {
		return nil, fmt.Errorf("compute matches for %q in event %q: %w", userID, eventID, err)
	}
	if out.Matches == nil {
		out.Matches = []domain.ComputedMatch{}
	}
	return out.Matches, nil
}

// GenerateEventQR returns the public URL of the event's join QR code
func (c *Client) GenerateEventQR(ctx context.Context, eventID string) (string, error) {
	var out qrResponse
	path := "/api/event/" + url.PathEscape(eventID) + "/qr"
	if err := c.post(ctx, path, nil, &out); err != nil {
		return "", fmt.Errorf("generate qr for event %q: %w", eventID, err)
	}
	return out.QRURL, nil
}

// GenerateRecap returns the public URL of the user's recap image for the event
func (c *Client) GenerateRecap(ctx context.Context, eventID, userID string) (string, error) {
	var out recapResponse
	path := "/api/recap/" + url.PathEscape(eventID) + "/" + url.PathEscape(userID)
	if err := c.post(ctx, path, nil, &out); err != nil {
		return "", fmt.Errorf("generate recap for %q in event %q: %w", userID, eventID, err)
	}
	return out.RecapURL, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w: %w", path, domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e errorResponse
		detail := string(raw)
		if json.Unmarshal(raw, &e) == nil && e.Detail != "" {
			detail = e.Detail
		}
		return fmt.Errorf("%w: %d - %s", domain.ErrExternalService, resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrExternalService, err)
	}
	return nil
}
