package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/roadbuddy/quizbot/core/logger"
	coretelegram "github.com/roadbuddy/quizbot/core/telegram"
	tghelpers "github.com/roadbuddy/quizbot/core/telegram/helpers"
	"github.com/roadbuddy/quizbot/core/telegram/router"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/model"
)

// Bot commands.
const (
	CmdStart      = "/start"
	CmdShowScore  = "/show_score"
	CmdBackToMenu = "/back_to_main_menu"
)

func (a *App) registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand(CmdStart, coretelegram.Command{
		Description: "Start the driving quiz",
		Handler:     a.onText,
	})
	reg.RegisterCommand(CmdShowScore, coretelegram.Command{
		Description: "Show your score",
		Handler:     a.onShowScore,
	})
	reg.RegisterCommand(CmdBackToMenu, coretelegram.Command{
		Description: "Choose country and city again",
		Handler:     a.onBackToMenu,
	})
	reg.SetTextFallback(a.onText)
	return reg
}

func (a *App) routes(reg *coretelegram.Registry) []coretelegram.Route {
	routes := router.CommandRoutes(reg)
	routes = append(routes,
		router.TextRoute(reg, router.TextOptions{}),
		router.CallbackRoute(a.onCallback, router.CallbackOptions{Answer: a.cfg.Telegram.CallbackAnswer}),
	)
	return routes
}

func (a *App) onText(c tele.Context) error {
	return a.withChat(c, a.conversation.Run)
}

func (a *App) onShowScore(c tele.Context) error {
	return a.withChat(c, a.conversation.ShowScore)
}

func (a *App) onBackToMenu(c tele.Context) error {
	return a.withChat(c, a.conversation.ResetToOnboarding)
}

func (a *App) onCallback(c tele.Context, data string) error {
	if strings.TrimSpace(data) == "" {
		logInvalid(tghelpers.BuildContext(c), fmt.Errorf("%w: empty callback data", model.ErrInvalidUpdate))
		return nil
	}
	return a.withChat(c, func(ctx context.Context, chatID int64) error {
		return a.conversation.RunWithToken(ctx, chatID, data)
	})
}

// chatOf returns the chat the update belongs to.
func chatOf(c tele.Context) (int64, error) {
	chat := c.Chat()
	if chat == nil {
		return 0, fmt.Errorf("%w: no chat", model.ErrInvalidUpdate)
	}
	return chat.ID, nil
}

// logInvalid records a rejected update. Malformed updates never reach the flow.
func logInvalid(ctx context.Context, err error) {
	logger.Warn(ctx, logger.CompTG, "update.invalid",
		slog.String("err_kind", errorKind(err)),
		logger.Err(err),
	)
}

// withChat validates the update and replies with the generic error message when fn fails.
func (a *App) withChat(c tele.Context, fn func(ctx context.Context, chatID int64) error) error {
	ctx := tghelpers.BuildContext(c)
	chatID, err := chatOf(c)
	if err != nil {
		logInvalid(ctx, err)
		return nil
	}

	err = fn(ctx, chatID)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	logger.Error(ctx, logger.CompFlow, "flow.failed",
		slog.String("err_kind", errorKind(err)),
		logger.Err(err),
	)
	if sendErr := message.Send(ctx, a.messenger, chatID, a.formatter.Error()); sendErr != nil {
		err = errors.Join(err, fmt.Errorf("send error reply: %w", sendErr))
	}
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidUpdate):
		return "invalid_update"
	case errors.Is(err, model.ErrStateViolation):
		return "state_violation"
	case errors.Is(err, model.ErrUpstream):
		return "upstream"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "unknown"
}
