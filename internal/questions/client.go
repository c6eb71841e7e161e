// Package questions talks to the question generation service.
package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/roadbuddy/quizbot/core/httpclient"
	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/model"
)

const (
	DefaultBaseURL = "https://rdhfgzwwvi.execute-api.eu-central-1.amazonaws.com"

	streetImagePath = "/api/v1/street-image"
	examChatPath    = "/api/v1/exam-chat"

	maxErrorBody = 512
)

type streetImageRequest struct {
	City string `json:"city"`
}

type streetImageResponse struct {
	ImageURL string `json:"image_url"`
}

type examChatRequest struct {
	ImageURL string `json:"image_url"`
	City     string `json:"city"`
}

type examChatChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type examChatResponse struct {
	QuestionText    string           `json:"question_text"`
	Choices         []examChatChoice `json:"choices"`
	CorrectAnswerID string           `json:"correct_answer_id"`
	Explanation     string           `json:"explanation"`
}

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default retrying client.
	HTTPClient *http.Client
}

// Client calls the question service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client. Zero options select the public service with a 60s timeout.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = httpclient.New(httpclient.Options{Timeout: timeout, ResponseHeaderTimeout: timeout})
	}
	return &Client{baseURL: base, http: hc}
}

// FetchImageURL asks for a street image of city.
func (c *Client) FetchImageURL(ctx context.Context, city string) (string, error) {
	var resp streetImageResponse
	if err := c.post(ctx, streetImagePath, streetImageRequest{City: city}, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ImageURL) == "" {
		return "", fmt.Errorf("street image: empty image_url")
	}
	return resp.ImageURL, nil
}

// FetchQuestion generates a question for the image. Choice ids are normalised to A-D.
func (c *Client) FetchQuestion(ctx context.Context, imageURL, city string) (model.Question, error) {
	var resp examChatResponse
	if err := c.post(ctx, examChatPath, examChatRequest{ImageURL: imageURL, City: city}, &resp); err != nil {
		return model.Question{}, err
	}
	q, err := resp.toQuestion()
	if err != nil {
		return model.Question{}, fmt.Errorf("exam chat: %w", err)
	}
	q.ImageURL = imageURL
	return q, nil
}

func (r examChatResponse) toQuestion() (model.Question, error) {
	if strings.TrimSpace(r.QuestionText) == "" {
		return model.Question{}, fmt.Errorf("empty question_text")
	}
	if len(r.Choices) != len(model.ChoiceIDs) {
		return model.Question{}, fmt.Errorf("got %d choices, want %d", len(r.Choices), len(model.ChoiceIDs))
	}
	correct := lo.IndexOf(lo.Map(r.Choices, func(c examChatChoice, _ int) string { return c.ID }), r.CorrectAnswerID)
	if correct < 0 {
		return model.Question{}, fmt.Errorf("correct_answer_id %q is not a choice", r.CorrectAnswerID)
	}

	// Ids are assigned by position so buttons always read A-D.
	q := model.Question{
		Text:            r.QuestionText,
		CorrectAnswerID: model.ChoiceIDs[correct],
		Explanation:     r.Explanation,
	}
	for i, ch := range r.Choices {
		q.Choices[i] = model.Choice{ID: model.ChoiceIDs[i], Text: ch.Text}
	}
	return q, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, logger.CompUpstream, "upstream.fail",
			slog.String("path", path),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn(ctx, logger.CompUpstream, "upstream.status",
			slog.String("path", path),
			slog.Int("code", resp.StatusCode),
			slog.Duration("duration", logger.Took(start)),
		)
		return &StatusError{Path: path, Code: resp.StatusCode, Body: logger.SanitizeLimit(string(snippet), maxErrorBody)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	logger.Debug(ctx, logger.CompUpstream, "upstream.ok",
		slog.String("path", path),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// StatusError is a non-2xx answer of the question service.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("post %s: status %d: %s", e.Path, e.Code, e.Body)
}
