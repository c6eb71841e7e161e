package sender

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/core/telegram/format"
	"github.com/roadbuddy/quizbot/core/telegram/keyboard"
)

// API is the subset of *tele.Bot used for outbound calls.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Options controls retries of a single outbound call.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single call.
	MaxDuration time.Duration
	// Columns is the inline keyboard width.
	Columns int
}

// Sender delivers chat messages synchronously, so callers observe ordering and failures.
// All text passes through EscapeMarkdownV2 here and nowhere else.
type Sender struct {
	api  API
	opts Options
}

// New builds a Sender with defaults for zero options.
func New(api API, opts Options) *Sender {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 15 * time.Second
	}
	if opts.Columns <= 0 {
		opts.Columns = keyboard.DefaultColumns
	}
	return &Sender{api: api, opts: opts}
}

// SendText sends raw text as MarkdownV2 with optional choice buttons.
// When Telegram rejects the entities, the raw text is resent without parse mode.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string, buttons []keyboard.Button) error {
	markup := keyboard.Grid(buttons, s.opts.Columns)
	escaped := format.EscapeMarkdownV2(text)

	err := s.do(ctx, "send_text", func() error {
		opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2, ReplyMarkup: markup}
		_, err := s.api.Send(tele.ChatID(chatID), escaped, opts)
		return err
	})
	if err == nil || !isParseEntitiesError(err) {
		return err
	}

	logger.Warn(ctx, logger.CompTGSender, "send.markup_fallback",
		slog.Int64("chat_id", chatID),
		slog.String("err", sanitizeErrorMessage(err)),
	)
	return s.do(ctx, "send_text_plain", func() error {
		_, err := s.api.Send(tele.ChatID(chatID), text, &tele.SendOptions{ReplyMarkup: markup})
		return err
	})
}

// SendPhoto sends a photo referenced by URL.
func (s *Sender) SendPhoto(ctx context.Context, chatID int64, photoURL string) error {
	return s.do(ctx, "send_photo", func() error {
		_, err := s.api.Send(tele.ChatID(chatID), &tele.Photo{File: tele.FromURL(photoURL)})
		return err
	})
}

func (s *Sender) do(ctx context.Context, action string, run func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deadlineCtx, cancel := context.WithTimeout(ctx, s.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := s.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadlineCtx.Err(); err != nil {
			lastErr = errors.Join(lastErr, err)
			break
		}

		lastErr = run()
		if lastErr == nil {
			logger.Debug(ctx, logger.CompTGSender, "send.success",
				slog.String("action", action),
				slog.Int("attempt", attempt),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)
			return nil
		}

		delay, retryable := retryDelay(lastErr, attempt, s.opts.RetryBackoff)
		if !retryable || attempt == attempts {
			break
		}
		logger.Debug(ctx, logger.CompTGSender, "send.retry.backoff",
			slog.String("action", action),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("err_kind", classifyError(lastErr)),
		)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = errors.Join(lastErr, deadlineCtx.Err())
			attempt = attempts
		case <-timer.C:
		}
	}

	logger.Error(ctx, logger.CompTGSender, "send.fail",
		slog.String("action", action),
		slog.String("err", sanitizeErrorMessage(lastErr)),
		slog.String("err_kind", classifyError(lastErr)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return lastErr
}
