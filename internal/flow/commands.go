package flow

import (
	"context"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/model"
)

// ResetToOnboarding restarts the conversation from the country choice.
func (r *Runner) ResetToOnboarding(ctx context.Context, chatID int64) error {
	return r.withUser(ctx, chatID, "reset", func(ctx context.Context, u *model.User) error {
		u.Reset()
		if err := r.save(ctx, u); err != nil {
			return err
		}
		logger.Info(ctx, logger.CompFlow, "flow.reset")
		return r.send(ctx, chatID, r.formatter.Welcome())
	})
}

// ShowScore reports the counters without changing the record.
func (r *Runner) ShowScore(ctx context.Context, chatID int64) error {
	return r.withUser(ctx, chatID, "score", func(ctx context.Context, u *model.User) error {
		return r.send(ctx, chatID, r.formatter.Score(u))
	})
}
