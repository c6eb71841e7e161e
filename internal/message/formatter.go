package message

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/roadbuddy/quizbot/core/telegram/keyboard"
	"github.com/roadbuddy/quizbot/internal/model"
)

// Message is a rendered outbound text with optional inline buttons.
type Message struct {
	Text    string
	Buttons []keyboard.Button
}

// Formatter renders messages from a template set.
type Formatter struct {
	t Templates
}

// NewFormatter builds a Formatter. Missing templates fall back to the embedded defaults.
func NewFormatter(t Templates) (*Formatter, error) {
	defaults, err := DefaultTemplates()
	if err != nil {
		return nil, err
	}
	for name, text := range t {
		defaults[name] = text
	}
	return &Formatter{t: defaults}, nil
}

// Welcome is the greeting with one button per supported country.
func (f *Formatter) Welcome() Message {
	return Message{
		Text: f.t[Welcome],
		Buttons: lo.Map(model.Countries(), func(c model.CountryOption, _ int) keyboard.Button {
			return keyboard.Button{Label: c.Label, Token: string(c.Country)}
		}),
	}
}

// CityPrompt asks for a city of the given country.
func (f *Formatter) CityPrompt(country model.Country) Message {
	return Message{
		Text: f.t[CityPrompt],
		Buttons: lo.Map(model.CitiesOf(country), func(c model.CityOption, _ int) keyboard.Button {
			return keyboard.Button{Label: c.Label, Token: string(c.City)}
		}),
	}
}

// Score reports the user's counters.
func (f *Formatter) Score(u *model.User) Message {
	return Message{Text: Substitute(f.t[Score], counters(u))}
}

// Question renders a question with four buttons labelled A-D, keyed by choice id.
func (f *Formatter) Question(q model.Question) Message {
	vars := map[string]string{"question_text": q.Text}
	buttons := make([]keyboard.Button, 0, len(q.Choices))
	for i, c := range q.Choices {
		label := model.ChoiceIDs[i]
		vars["choice_"+strings.ToLower(label)] = c.Text
		buttons = append(buttons, keyboard.Button{Label: label, Token: c.ID})
	}
	return Message{Text: Substitute(f.t[Question], vars), Buttons: buttons}
}

// Processing is shown while the next question is generated.
func (f *Formatter) Processing() Message {
	return Message{Text: f.t[Processing]}
}

// Correct congratulates the user after the counters were updated.
func (f *Formatter) Correct(u *model.User, explanation string) Message {
	vars := counters(u)
	vars["explanation"] = explanation
	return Message{Text: Substitute(f.t[Correct], vars)}
}

// Wrong reveals the expected answer of the judged question.
func (f *Formatter) Wrong(u *model.User, correctID, explanation string) Message {
	vars := counters(u)
	vars["correct_answer_id"] = correctID
	vars["explanation"] = explanation
	return Message{Text: Substitute(f.t[Wrong], vars)}
}

// AnswerHint asks the user to use the choice buttons of the pending question.
func (f *Formatter) AnswerHint() Message {
	buttons := lo.Map(model.ChoiceIDs[:], func(id string, _ int) keyboard.Button {
		return keyboard.Button{Label: id, Token: id}
	})
	return Message{Text: f.t[AnswerHint], Buttons: buttons}
}

// Error is the generic failure reply. Internal causes are never shown.
func (f *Formatter) Error() Message {
	return Message{Text: f.t[Error]}
}

func counters(u *model.User) map[string]string {
	return map[string]string{
		"correct_answer_count": strconv.Itoa(u.CorrectCount),
		"wrong_answer_count":   strconv.Itoa(u.WrongCount),
	}
}

