package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/roadbuddy/quizbot/core/telegram/keyboard"
	"github.com/roadbuddy/quizbot/internal/chatlock"
	"github.com/roadbuddy/quizbot/internal/message"
	"github.com/roadbuddy/quizbot/internal/model"
	"github.com/roadbuddy/quizbot/internal/session"
	"github.com/roadbuddy/quizbot/internal/store/memstore"
)

type outbound struct {
	chatID  int64
	photo   string
	text    string
	buttons []keyboard.Button
}

type recorder struct {
	mu  sync.Mutex
	out []outbound
	err error
}

func (r *recorder) SendText(_ context.Context, chatID int64, text string, buttons []keyboard.Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.out = append(r.out, outbound{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (r *recorder) SendPhoto(_ context.Context, chatID int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.out = append(r.out, outbound{chatID: chatID, photo: url})
	return nil
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var texts []string
	for _, o := range r.out {
		if o.photo == "" {
			texts = append(texts, o.text)
		}
	}
	return texts
}

func (r *recorder) photos() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.out {
		if o.photo != "" {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.out = nil
	r.mu.Unlock()
}

// rotatingQuestions answers A, B, C, D, A, ... on successive questions.
type rotatingQuestions struct {
	mu   sync.Mutex
	n    int
	fail bool
}

func (q *rotatingQuestions) FetchImageURL(context.Context, string) (string, error) {
	if q.fail {
		return "", errors.New("service unavailable")
	}
	return "https://img.example.org/street.jpg", nil
}

func (q *rotatingQuestions) FetchQuestion(_ context.Context, imageURL, _ string) (model.Question, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := model.ChoiceIDs[q.n%4]
	q.n++
	return model.Question{
		ImageURL: imageURL,
		Text:     fmt.Sprintf("Question %d", q.n),
		Choices: [4]model.Choice{
			{ID: "A", Text: "left"}, {ID: "B", Text: "right"}, {ID: "C", Text: "stop"}, {ID: "D", Text: "go"},
		},
		CorrectAnswerID: id,
		Explanation:     "explanation " + id,
	}, nil
}

type harness struct {
	runner    *Runner
	store     *memstore.Store
	out       *recorder
	questions *rotatingQuestions
	formatter *message.Formatter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f, err := message.NewFormatter(nil)
	if err != nil {
		t.Fatal(err)
	}
	st := memstore.New()
	out := &recorder{}
	q := &rotatingQuestions{}
	sessions, err := session.NewManager(session.Options{
		Questions: q,
		Store:     st,
		Messenger: out,
		Formatter: f,
		Retry:     session.RetryPolicy{MaxAttempts: 2},
		Sleep:     func(context.Context, time.Duration) error { return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRunner(Options{
		Store:     st,
		Locker:    chatlock.NewMemory(0),
		Questions: sessions,
		Messenger: out,
		Formatter: f,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &harness{runner: r, store: st, out: out, questions: q, formatter: f}
}

func (h *harness) user(t *testing.T, chatID int64) *model.User {
	t.Helper()
	u, ok := h.store.Get(chatID)
	if !ok {
		t.Fatalf("chat %d not stored", chatID)
	}
	return u
}

// seed stores u as the chat's current record.
func (h *harness) seed(t *testing.T, u *model.User) {
	t.Helper()
	if _, err := h.store.GetOrCreate(context.Background(), u.ChatID); err != nil {
		t.Fatal(err)
	}
	if err := h.store.Save(context.Background(), u); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) quizUser(t *testing.T, chatID int64, pending string) *model.User {
	t.Helper()
	u := model.NewUser(chatID)
	u.Location = model.Location{Country: model.CountryFrance, City: model.CityParis}
	u.EnterQuiz()
	u.PendingAnswerID = pending
	u.Explanation = "cached explanation"
	h.seed(t, u)
	return u
}

