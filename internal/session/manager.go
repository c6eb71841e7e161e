// Package session sends quiz questions to a user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/model"
	"github.com/roadbuddy/quizbot/internal/store"
)

// DefaultCity is the city sent to the question service.
const DefaultCity = "Paris"

// QuestionSource generates questions.
type QuestionSource interface {
	FetchImageURL(ctx context.Context, city string) (string, error)
	FetchQuestion(ctx context.Context, imageURL, city string) (model.Question, error)
}

// Options configures a Manager.
type Options struct {
	Questions QuestionSource
	Store     store.Store
	Messenger message.Messenger
	Formatter *message.Formatter

	// City is sent to the question service for every user.
	City  string
	Retry RetryPolicy
	// Sleep replaces the backoff wait, mainly in tests.
	Sleep SleepFunc
}

// Manager runs the question sequence with bounded retries.
type Manager struct {
	questions QuestionSource
	store     store.Store
	messenger message.Messenger
	formatter *message.Formatter
	city      string
	retry     RetryPolicy
	sleep     SleepFunc
}

// NewManager validates collaborators and fills defaults.
func NewManager(opts Options) (*Manager, error) {
	if opts.Questions == nil || opts.Store == nil || opts.Messenger == nil || opts.Formatter == nil {
		return nil, errors.New("session: questions, store, messenger and formatter are required")
	}
	if opts.City == "" {
		opts.City = DefaultCity
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Manager{
		questions: opts.Questions,
		store:     opts.Store,
		messenger: opts.Messenger,
		formatter: opts.Formatter,
		city:      opts.City,
		retry:     opts.Retry.withDefaults(),
		sleep:     opts.Sleep,
	}, nil
}

// SendNextQuestion fetches a question, records its answer on u, persists u and sends the
// photo followed by the question. A failing step restarts the sequence after a backoff.
// After the last attempt the error wraps model.ErrUpstream.
func (m *Manager) SendNextQuestion(ctx context.Context, u *model.User) error {
	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= m.retry.MaxAttempts; attempt++ {
		lastErr = m.attempt(ctx, u)
		if lastErr == nil {
			logger.Info(ctx, logger.CompQuiz, "question.sent",
				slog.Int("attempt", attempt),
				slog.Duration("duration", logger.Took(start)),
			)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == m.retry.MaxAttempts {
			break
		}

		backoff := m.retry.Backoff(attempt)
		logger.Warn(ctx, logger.CompQuiz, "question.retry",
			slog.Int("attempt", attempt),
			slog.Int("attempts", m.retry.MaxAttempts),
			slog.Duration("backoff", backoff),
			logger.Err(lastErr),
		)
		if err := m.sleep(ctx, backoff); err != nil {
			return err
		}
	}

	logger.Error(ctx, logger.CompQuiz, "question.fail",
		slog.Int("attempts", m.retry.MaxAttempts),
		slog.Duration("duration", logger.Took(start)),
		logger.Err(lastErr),
	)
	return fmt.Errorf("%w: send question after %d attempts: %w", model.ErrUpstream, m.retry.MaxAttempts, lastErr)
}

func (m *Manager) attempt(ctx context.Context, u *model.User) error {
	imageURL, err := m.questions.FetchImageURL(ctx, m.city)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	q, err := m.questions.FetchQuestion(ctx, imageURL, m.city)
	if err != nil {
		return fmt.Errorf("fetch question: %w", err)
	}

	u.SetPending(q)
	if err := m.store.Save(ctx, u); err != nil {
		return fmt.Errorf("save pending answer: %w", err)
	}

	if err := m.messenger.SendPhoto(ctx, u.ChatID, imageURL); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	if err := message.Send(ctx, m.messenger, u.ChatID, m.formatter.Question(q)); err != nil {
		return fmt.Errorf("send question: %w", err)
	}
	return nil
}
