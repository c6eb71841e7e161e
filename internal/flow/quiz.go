package flow

import (
	"context"
	"log/slog"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/answer"
	"github.com/roadbuddy/quizbot/internal/model"
)

func (r *Runner) quiz(ctx context.Context, u *model.User, in input) error {
	if !in.hasToken {
		return r.nextQuestion(ctx, u)
	}
	if !in.ok || in.answer.Kind != answer.Choice {
		kind := "unrecognized"
		if in.ok {
			kind = in.answer.Kind.String()
		}
		logger.Info(ctx, logger.CompFlow, "quiz.unexpected_token",
			slog.String("token", logger.SanitizeLimit(in.token, 64)),
			slog.String("kind", kind),
		)
		if u.PendingAnswerID == "" {
			return r.nextQuestion(ctx, u)
		}
		return r.send(ctx, u.ChatID, r.formatter.AnswerHint())
	}
	if u.PendingAnswerID == "" {
		return r.questions.SendNextQuestion(ctx, u)
	}

	if err := r.judge(ctx, u, in.answer.ChoiceID); err != nil {
		return err
	}
	return r.nextQuestion(ctx, u)
}

// judge scores choiceID against the pending answer and consumes it.
// The feedback is delivered before the caller asks for the next question.
func (r *Runner) judge(ctx context.Context, u *model.User, choiceID string) error {
	expected := u.PendingAnswerID
	explanation := u.Explanation
	correct := choiceID == expected

	if correct {
		u.CorrectCount++
	} else {
		u.WrongCount++
	}
	u.PendingAnswerID = ""
	if err := r.save(ctx, u); err != nil {
		return err
	}

	outcome := "wrong"
	if correct {
		outcome = "correct"
	}
	logger.Info(ctx, logger.CompFlow, "quiz.judged",
		slog.String("outcome", outcome),
		slog.Int("correct", u.CorrectCount),
		slog.Int("wrong", u.WrongCount),
	)

	if correct {
		return r.send(ctx, u.ChatID, r.formatter.Correct(u, explanation))
	}
	return r.send(ctx, u.ChatID, r.formatter.Wrong(u, expected, explanation))
}
