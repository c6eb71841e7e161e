package message

import (
	"context"

	"github.com/roadbuddy/quizbot/core/telegram/keyboard"
)

// Messenger delivers messages to a chat. Calls return once the transport accepted the message.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, buttons []keyboard.Button) error
	SendPhoto(ctx context.Context, chatID int64, url string) error
}

// Send delivers a rendered message.
func Send(ctx context.Context, m Messenger, chatID int64, msg Message) error {
	return m.SendText(ctx, chatID, msg.Text, msg.Buttons)
}
