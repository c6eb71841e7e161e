package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/roadbuddy/quizbot/core/telegram/keyboard"
	"github.com/roadbuddy/quizbot/internal/config"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/model"
)

type call struct {
	op     string
	chatID int64
	token  string
}

type fakeConversation struct {
	calls []call
	err   error
}

func (f *fakeConversation) record(op string, chatID int64, token string) error {
	f.calls = append(f.calls, call{op: op, chatID: chatID, token: token})
	return f.err
}

func (f *fakeConversation) Run(_ context.Context, chatID int64) error {
	return f.record("run", chatID, "")
}

func (f *fakeConversation) RunWithToken(_ context.Context, chatID int64, token string) error {
	return f.record("token", chatID, token)
}

func (f *fakeConversation) ResetToOnboarding(_ context.Context, chatID int64) error {
	return f.record("reset", chatID, "")
}

func (f *fakeConversation) ShowScore(_ context.Context, chatID int64) error {
	return f.record("score", chatID, "")
}

type fakeMessenger struct {
	texts []string
}

func (f *fakeMessenger) SendText(_ context.Context, _ int64, text string, _ []keyboard.Button) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendPhoto(context.Context, int64, string) error { return nil }

func newTestApp(t *testing.T) (*App, *fakeConversation, *fakeMessenger, *tele.Bot) {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	f, err := message.NewFormatter(nil)
	if err != nil {
		t.Fatal(err)
	}
	conv := &fakeConversation{}
	msg := &fakeMessenger{}
	return &App{
		cfg:          &config.Config{},
		bot:          bot,
		conversation: conv,
		messenger:    msg,
		formatter:    f,
	}, conv, msg, bot
}

func textUpdate(id int, chatID int64, text string) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Text:   text,
		Chat:   &tele.Chat{ID: chatID},
		Sender: &tele.User{ID: chatID},
	}}
}

func callbackUpdate(id int, chatID int64, data string) tele.Update {
	return tele.Update{ID: id, Callback: &tele.Callback{
		Data:    data,
		Sender:  &tele.User{ID: chatID},
		Message: &tele.Message{Chat: &tele.Chat{ID: chatID}},
	}}
}

func TestCommandsReachConversation(t *testing.T) {
	a, conv, _, bot := newTestApp(t)
	reg := a.registry()

	for i, text := range []string{"/start", "/show_score", "/back_to_main_menu", "hello"} {
		c := bot.NewContext(textUpdate(i+1, 42, text))
		var h tele.HandlerFunc
		if _, cmd, ok := reg.LookupCommand(text); ok {
			h = cmd.Handler
		} else {
			h = reg.TextFallback()
		}
		if err := h(c); err != nil {
			t.Fatalf("%q: %v", text, err)
		}
	}

	want := []string{"run", "score", "reset", "run"}
	if len(conv.calls) != len(want) {
		t.Fatalf("calls = %+v", conv.calls)
	}
	for i, op := range want {
		if conv.calls[i].op != op || conv.calls[i].chatID != 42 {
			t.Errorf("call %d = %+v, want %s", i, conv.calls[i], op)
		}
	}
}

func TestCallbackPassesRawToken(t *testing.T) {
	a, conv, _, bot := newTestApp(t)

	if err := a.onCallback(bot.NewContext(callbackUpdate(1, 7, "PARIS")), "PARIS"); err != nil {
		t.Fatal(err)
	}
	if len(conv.calls) != 1 || conv.calls[0] != (call{op: "token", chatID: 7, token: "PARIS"}) {
		t.Fatalf("calls = %+v", conv.calls)
	}
}

func TestInvalidUpdatesAreRejected(t *testing.T) {
	a, conv, msg, bot := newTestApp(t)

	if err := a.onCallback(bot.NewContext(callbackUpdate(1, 7, "")), " "); err != nil {
		t.Fatal(err)
	}
	noChat := tele.Update{ID: 2, Callback: &tele.Callback{Data: "A", Sender: &tele.User{ID: 7}}}
	if err := a.onCallback(bot.NewContext(noChat), "A"); err != nil {
		t.Fatal(err)
	}
	if len(conv.calls) != 0 || len(msg.texts) != 0 {
		t.Fatalf("invalid updates reached the flow: calls=%+v texts=%q", conv.calls, msg.texts)
	}
}

func TestChatOfRejectsUpdatesWithoutChat(t *testing.T) {
	_, _, _, bot := newTestApp(t)

	noChat := bot.NewContext(tele.Update{ID: 3, Callback: &tele.Callback{Data: "A", Sender: &tele.User{ID: 7}}})
	if _, err := chatOf(noChat); !errors.Is(err, model.ErrInvalidUpdate) {
		t.Fatalf("err = %v, want ErrInvalidUpdate", err)
	}
	id, err := chatOf(bot.NewContext(textUpdate(4, 11, "hi")))
	if err != nil || id != 11 {
		t.Fatalf("chatOf = %d, %v", id, err)
	}
}

func TestFailureSendsGenericReply(t *testing.T) {
	a, conv, msg, bot := newTestApp(t)
	conv.err = fmt.Errorf("%w: question service: status 503", model.ErrUpstream)

	err := a.onText(bot.NewContext(textUpdate(1, 9, "hi")))
	if !errors.Is(err, model.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if len(msg.texts) != 1 || msg.texts[0] != "Error processing your request." {
		t.Fatalf("reply = %q", msg.texts)
	}
}

func TestErrorKind(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("x: %w", model.ErrStateViolation): "state_violation",
		fmt.Errorf("x: %w", model.ErrUpstream):       "upstream",
		fmt.Errorf("x: %w", model.ErrInvalidUpdate):  "invalid_update",
		context.DeadlineExceeded:                     "timeout",
		errors.New("other"):                          "unknown",
	}
	for err, want := range cases {
		if got := errorKind(err); got != want {
			t.Errorf("errorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestRegistryListsMenuCommands(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	list := a.registry().ListCommands(true)
	if len(list) != 3 {
		t.Fatalf("commands = %+v", list)
	}
}
