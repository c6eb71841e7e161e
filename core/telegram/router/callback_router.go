package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/roadbuddy/quizbot/core/logger"
	tg "github.com/roadbuddy/quizbot/core/telegram"
	tghelpers "github.com/roadbuddy/quizbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackHandler receives the raw callback data of a button press.
type CallbackHandler func(c tele.Context, data string) error

// CallbackOptions customises acknowledgement of button presses.
type CallbackOptions struct {
	// Answer is shown to the user as a toast; empty acknowledges silently.
	Answer string
}

// CallbackRoute returns a handler that acknowledges every button press
// before passing its data to h.
func CallbackRoute(h CallbackHandler, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		data := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
		if err := c.Respond(&tele.CallbackResponse{Text: opts.Answer}); err != nil {
			logger.Warn(tghelpers.BuildContext(c), logger.CompTG, "callback.respond_failed", logger.Err(err))
		}

		return handleWithSummary(c, "callback", start, func() error {
			return h(c, data)
		}, slog.String("token", logger.SanitizeLimit(data, 64)))
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
