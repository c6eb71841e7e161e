// Package answer classifies raw user tokens into typed answers.
package answer

import (
	"strings"

	"github.com/roadbuddy/quizbot/internal/model"
)

// Kind tags a recognized answer.
type Kind int

const (
	CountrySelected Kind = iota + 1
	CitySelected
	Choice
)

func (k Kind) String() string {
	switch k {
	case CountrySelected:
		return "country"
	case CitySelected:
		return "city"
	case Choice:
		return "choice"
	}
	return "unknown"
}

// Answer is a recognized token. Exactly one of Country, City or ChoiceID is set, according to Kind.
type Answer struct {
	Kind     Kind
	Country  model.Country
	City     model.City
	ChoiceID string
}

// Interpret classifies a raw token. ok is false for anything unrecognized.
func Interpret(token string) (Answer, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return Answer{}, false
	}
	if _, found := model.LookupCountry(model.Country(t)); found {
		return Answer{Kind: CountrySelected, Country: model.Country(t)}, true
	}
	if _, _, found := model.LookupCity(model.City(t)); found {
		return Answer{Kind: CitySelected, City: model.City(t)}, true
	}
	for _, id := range model.ChoiceIDs {
		if t == id {
			return Answer{Kind: Choice, ChoiceID: id}, true
		}
	}
	return Answer{}, false
}

// LocationChange returns the partial location carried by a country or city answer.
func (a Answer) LocationChange() (model.Location, bool) {
	switch a.Kind {
	case CountrySelected:
		return model.Location{Country: a.Country}, true
	case CitySelected:
		return model.Location{City: a.City}, true
	}
	return model.Location{}, false
}
