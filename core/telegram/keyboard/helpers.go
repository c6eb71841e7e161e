package keyboard

import (
	"github.com/samber/lo"
	tele "gopkg.in/telebot.v4"
)

// Button is an inline button whose callback data is sent back verbatim.
type Button struct {
	Label string
	Token string
}

// DefaultColumns is the grid width used for choice buttons.
const DefaultColumns = 2

// Grid lays buttons out in rows of up to columns buttons.
// The callback data carries the raw token, without telebot's unique prefix.
// It returns nil for an empty button list.
func Grid(buttons []Button, columns int) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	if columns <= 0 {
		columns = DefaultColumns
	}
	rows := lo.Chunk(buttons, columns)
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = lo.Map(rows, func(row []Button, _ int) []tele.InlineButton {
		return lo.Map(row, func(b Button, _ int) tele.InlineButton {
			return tele.InlineButton{Text: b.Label, Data: b.Token}
		})
	})
	return markup
}
