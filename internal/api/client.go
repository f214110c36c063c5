package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransportError reports a non-success HTTP status or a network failure.
// The client never retries; retry policy belongs to callers.
type TransportError struct {
	Status int
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("api request %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

type bearerTransport struct {
	rt    http.RoundTripper
	token func() string
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	if tok := t.token(); tok != "" {
		cl.Header.Set("Authorization", "Bearer "+tok)
	}
	cl.Header.Set("Content-Type", "application/json")
	return t.rt.RoundTrip(cl)
}

// Client talks to the conversational backend. It authenticates once per
// lifecycle; a failed authentication leaves it disconnected and the widget
// degrades to canned replies instead of surfacing an error.
type Client struct {
	httpc    *http.Client
	baseURL  string
	clientID string

	mu        sync.Mutex
	token     string
	sessionID string
	connected bool
	language  string
	fallback  string
}

func New(baseURL, clientID string) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		language: "it",
		fallback: "Scusa, non sono riuscito a elaborare la tua richiesta.",
	}
	c.httpc = &http.Client{
		Timeout:   30 * time.Second,
		Transport: bearerTransport{rt: http.DefaultTransport, token: c.currentToken},
	}
	return c
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	c.language = lang
	c.mu.Unlock()
}

// SetFallback replaces the fixed string returned for unrecognized response
// shapes, so it can follow the widget language.
func (c *Client) SetFallback(s string) {
	c.mu.Lock()
	c.fallback = s
	c.mu.Unlock()
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && c.token != ""
}

// SessionID identifies this widget instance to the backend. It is generated
// on successful authentication and stable for the client's lifetime.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) Reset() {
	c.mu.Lock()
	c.token = ""
	c.sessionID = ""
	c.connected = false
	c.mu.Unlock()
}

// Authenticate exchanges the client identifier for a bearer token and
// generates a fresh session identifier.
func (c *Client) Authenticate(ctx context.Context) error {
	body, err := c.post(ctx, c.baseURL+"/auth/token", map[string]string{"clientId": c.clientID})
	if err != nil {
		c.Reset()
		return err
	}
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Token == "" {
		c.Reset()
		return fmt.Errorf("auth response missing token")
	}
	c.mu.Lock()
	c.token = parsed.Token
	c.sessionID = uuid.NewString()
	c.connected = true
	c.mu.Unlock()
	return nil
}

// SendMessage posts to the default conversational endpoint and extracts the
// reply text. Unrecognized shapes degrade to the fixed fallback string.
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	payload := map[string]string{
		"text":     text,
		"user":     c.sessionID,
		"client":   c.clientID,
		"language": c.language,
	}
	fallback := c.fallback
	c.mu.Unlock()

	body, err := c.post(ctx, fmt.Sprintf("%s/%s/message", c.baseURL, c.clientID), payload)
	if err != nil {
		return "", err
	}
	if reply, ok := classifyText(body); ok {
		return reply, nil
	}
	return fallback, nil
}

// SendToEndpoint performs a quick-action GET against an arbitrary endpoint
// and classifies the body using the endpoint kind as hint.
func (c *Client) SendToEndpoint(ctx context.Context, url string) (Reply, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	fallback := c.fallback
	c.mu.Unlock()
	return Classify(KindForURL(url), body, fallback), nil
}

// SendTastingRequest starts or advances a guided tasting.
func (c *Client) SendTastingRequest(ctx context.Context, mode, wineID, stage string) (*TastingStage, error) {
	c.mu.Lock()
	payload := map[string]string{
		"language": c.language,
		"mode":     mode,
		"userId":   c.sessionID,
		"wineName": wineID,
		"stage":    stage,
	}
	c.mu.Unlock()

	body, err := c.post(ctx, c.baseURL+"/api/wine-tasting", payload)
	if err != nil {
		return nil, err
	}
	var stageData TastingStage
	if err := json.Unmarshal(body, &stageData); err != nil {
		return nil, fmt.Errorf("decode tasting stage: %w", err)
	}
	return &stageData, nil
}

// SendTastingFeedback submits free-text feedback for the active stage.
func (c *Client) SendTastingFeedback(ctx context.Context, wineID, stage, text string) (*FeedbackReply, error) {
	c.mu.Lock()
	payload := map[string]string{
		"sessionId":    c.sessionID,
		"wineName":     wineID,
		"stage":        stage,
		"feedbackType": "stage",
		"feedbackText": text,
	}
	c.mu.Unlock()

	body, err := c.post(ctx, c.baseURL+"/api/wine-tasting/feedback", payload)
	if err != nil {
		return nil, err
	}
	var reply FeedbackReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("decode feedback reply: %w", err)
	}
	return &reply, nil
}

// SendExperienceMessage sends a message in an experience-scoped sub-chat.
// A missing reply field degrades to the fixed fallback string.
func (c *Client) SendExperienceMessage(ctx context.Context, cardID, text string) (string, error) {
	c.mu.Lock()
	payload := map[string]string{
		"cardId":      cardID,
		"userMessage": text,
		"language":    c.language,
	}
	fallback := c.fallback
	c.mu.Unlock()

	body, err := c.post(ctx, c.baseURL+"/api/winery/experiences/message", payload)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Reply == "" {
		return fallback, nil
	}
	return parsed.Reply, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: req.URL.String(), Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	return body, nil
}
