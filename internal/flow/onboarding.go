package flow

import (
	"context"
	"log/slog"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/answer"
	"github.com/roadbuddy/quizbot/internal/model"
)

func (r *Runner) onboarding(ctx context.Context, u *model.User, in input) error {
	if in.ok {
		if err := r.applyLocation(ctx, u, in.answer); err != nil {
			return err
		}
	}

	switch {
	case u.Location.Country == "":
		return r.send(ctx, u.ChatID, r.formatter.Welcome())
	case u.Location.City == "":
		return r.send(ctx, u.ChatID, r.formatter.CityPrompt(u.Location.Country))
	}

	u.EnterQuiz()
	if err := r.save(ctx, u); err != nil {
		return err
	}
	logger.Info(ctx, logger.CompFlow, "quiz.started",
		slog.String("country", string(u.Location.Country)),
		slog.String("city", string(u.Location.City)),
	)
	return r.nextQuestion(ctx, u)
}

// applyLocation records a country or city selection. Rejected cities leave the record untouched.
func (r *Runner) applyLocation(ctx context.Context, u *model.User, a answer.Answer) error {
	change, ok := a.LocationChange()
	if !ok {
		return nil
	}

	next := u.Location
	switch a.Kind {
	case answer.CountrySelected:
		next = next.WithCountry(change.Country)
	case answer.CitySelected:
		var accepted bool
		if next, accepted = next.WithCity(change.City); !accepted {
			logger.Warn(ctx, logger.CompFlow, "location.city_rejected",
				slog.String("country", string(u.Location.Country)),
				slog.String("city", string(change.City)),
			)
			return nil
		}
	}
	if next == u.Location {
		return nil
	}
	u.Location = next
	return r.save(ctx, u)
}
