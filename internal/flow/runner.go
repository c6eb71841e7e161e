// Package flow drives a user's conversation through onboarding and the quiz loop.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/answer"
	"github.com/roadbuddy/quizbot/internal/chatlock"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/model"
	"github.com/roadbuddy/quizbot/internal/store"
)

// QuestionSender sends the next quiz question and records its expected answer on the user.
type QuestionSender interface {
	SendNextQuestion(ctx context.Context, u *model.User) error
}

// Options wires a Runner.
type Options struct {
	Store     store.Store
	Locker    chatlock.Locker
	Questions QuestionSender
	Messenger message.Messenger
	Formatter *message.Formatter
}

// Runner handles inbound events. Calls for the same chat are serialised by Locker.
type Runner struct {
	store     store.Store
	locker    chatlock.Locker
	questions QuestionSender
	messenger message.Messenger
	formatter *message.Formatter
}

// NewRunner validates collaborators.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Store == nil || opts.Locker == nil || opts.Questions == nil || opts.Messenger == nil || opts.Formatter == nil {
		return nil, errors.New("flow: store, locker, questions, messenger and formatter are required")
	}
	return &Runner{
		store:     opts.Store,
		locker:    opts.Locker,
		questions: opts.Questions,
		messenger: opts.Messenger,
		formatter: opts.Formatter,
	}, nil
}

// input is one inbound event. hasToken is false for free text.
type input struct {
	token    string
	hasToken bool
	answer   answer.Answer
	ok       bool
}

// Run handles free text from chatID.
func (r *Runner) Run(ctx context.Context, chatID int64) error {
	return r.withUser(ctx, chatID, "run", func(ctx context.Context, u *model.User) error {
		return r.dispatch(ctx, u, input{})
	})
}

// RunWithToken handles a button press carrying token.
func (r *Runner) RunWithToken(ctx context.Context, chatID int64, token string) error {
	in := input{token: token, hasToken: true}
	in.answer, in.ok = answer.Interpret(token)
	return r.withUser(ctx, chatID, "run_with_token", func(ctx context.Context, u *model.User) error {
		if !in.ok {
			logger.Warn(ctx, logger.CompFlow, "input.unrecognized",
				slog.String("phase", string(u.Phase)),
				slog.String("token", logger.SanitizeLimit(token, 64)),
			)
		}
		return r.dispatch(ctx, u, in)
	})
}

func (r *Runner) dispatch(ctx context.Context, u *model.User, in input) error {
	switch u.Phase {
	case model.PhaseOnboarding:
		return r.onboarding(ctx, u, in)
	case model.PhaseQuiz:
		return r.quiz(ctx, u, in)
	}
	return fmt.Errorf("%w: phase %q", model.ErrStateViolation, u.Phase)
}

// withUser holds the chat lock while fn runs on the loaded user.
func (r *Runner) withUser(ctx context.Context, chatID int64, op string, fn func(context.Context, *model.User) error) error {
	ctx = logger.WithChatID(ctx, chatID)
	start := time.Now()

	release, err := r.locker.Lock(ctx, chatID)
	if err != nil {
		return fmt.Errorf("lock chat %d: %w", chatID, err)
	}
	defer release()

	u, err := r.store.GetOrCreate(ctx, chatID)
	if err != nil {
		return fmt.Errorf("%w: load chat %d: %w", model.ErrUpstream, chatID, err)
	}
	phase := u.Phase

	err = fn(ctx, u)
	logger.Debug(ctx, logger.CompFlow, "flow."+op,
		slog.String("status", logger.Status(err)),
		slog.String("phase", string(phase)),
		slog.Int("correct", u.CorrectCount),
		slog.Int("wrong", u.WrongCount),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}

func (r *Runner) save(ctx context.Context, u *model.User) error {
	if err := r.store.Save(ctx, u); err != nil {
		return fmt.Errorf("%w: save chat %d: %w", model.ErrUpstream, u.ChatID, err)
	}
	return nil
}

func (r *Runner) send(ctx context.Context, chatID int64, msg message.Message) error {
	if err := message.Send(ctx, r.messenger, chatID, msg); err != nil {
		return fmt.Errorf("%w: send to chat %d: %w", model.ErrUpstream, chatID, err)
	}
	return nil
}

// nextQuestion shows the processing notice and runs the question sequence.
func (r *Runner) nextQuestion(ctx context.Context, u *model.User) error {
	if err := r.send(ctx, u.ChatID, r.formatter.Processing()); err != nil {
		return err
	}
	return r.questions.SendNextQuestion(ctx, u)
}
