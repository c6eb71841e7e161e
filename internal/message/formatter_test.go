package message

import (
	"strings"
	"testing"

	"github.com/roadbuddy/quizbot/internal/model"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter(nil)
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}
	return f
}

func TestQuestionMessage(t *testing.T) {
	f := newFormatter(t)
	msg := f.Question(model.Question{
		Text: "What does this sign mean?",
		Choices: [4]model.Choice{
			{ID: "A", Text: "Stop"},
			{ID: "B", Text: "Yield {explanation}"},
			{ID: "C", Text: "No entry"},
			{ID: "D", Text: "Parking"},
		},
	})
	for _, want := range []string{"🚦 What does this sign mean?", "A) Stop", "B) Yield {explanation}", "D) Parking"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("question text missing %q:\n%s", want, msg.Text)
		}
	}
	if len(msg.Buttons) != 4 {
		t.Fatalf("buttons = %d, want 4", len(msg.Buttons))
	}
	for i, b := range msg.Buttons {
		if b.Label != model.ChoiceIDs[i] || b.Token != model.ChoiceIDs[i] {
			t.Errorf("button %d = %+v", i, b)
		}
	}
}

func TestWelcomeAndCityButtons(t *testing.T) {
	f := newFormatter(t)
	w := f.Welcome()
	if len(w.Buttons) != 1 || w.Buttons[0].Token != "FRANCE" || w.Buttons[0].Label != "🇫🇷 France" {
		t.Fatalf("welcome buttons = %+v", w.Buttons)
	}
	c := f.CityPrompt(model.CountryFrance)
	if len(c.Buttons) != 1 || c.Buttons[0].Token != "PARIS" || c.Buttons[0].Label != "Paris" {
		t.Fatalf("city buttons = %+v", c.Buttons)
	}
}

func TestJudgementMessages(t *testing.T) {
	f := newFormatter(t)
	u := &model.User{CorrectCount: 3, WrongCount: 2}

	correct := f.Correct(u, "Red means stop.").Text
	if !strings.Contains(correct, "You got it right 3 times!") || !strings.Contains(correct, "Explanation: Red means stop.") {
		t.Fatalf("correct = %q", correct)
	}

	wrong := f.Wrong(u, "C", "Yield to the right.").Text
	if !strings.Contains(wrong, "You got it wrong 2 times!") || !strings.Contains(wrong, "The correct answer was C.") {
		t.Fatalf("wrong = %q", wrong)
	}

	score := f.Score(u).Text
	if !strings.Contains(score, "*Correct Answers*: 3") || !strings.Contains(score, "*Wrong Answers*: 2") {
		t.Fatalf("score = %q", score)
	}
}

func TestAnswerHintCarriesChoiceButtons(t *testing.T) {
	f := newFormatter(t)
	msg := f.AnswerHint()
	if !strings.Contains(msg.Text, "A, B, C or D") {
		t.Fatalf("hint text = %q", msg.Text)
	}
	if len(msg.Buttons) != len(model.ChoiceIDs) {
		t.Fatalf("buttons = %d, want %d", len(msg.Buttons), len(model.ChoiceIDs))
	}
	for i, b := range msg.Buttons {
		if b.Label != model.ChoiceIDs[i] || b.Token != model.ChoiceIDs[i] {
			t.Errorf("button %d = %+v", i, b)
		}
	}
}
