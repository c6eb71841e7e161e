package model

import "testing"

func TestLocationWithCity(t *testing.T) {
	if _, ok := (Location{}).WithCity(CityParis); ok {
		t.Fatal("city must be rejected without a country")
	}
	loc, ok := Location{Country: CountryFrance}.WithCity(CityParis)
	if !ok || !loc.Complete() {
		t.Fatalf("loc = %+v, ok = %v", loc, ok)
	}
	if _, ok := (Location{Country: "ITALY"}).WithCity(CityParis); ok {
		t.Fatal("city of another country must be rejected")
	}
}

func TestLocationWithCountryClearsForeignCity(t *testing.T) {
	loc := Location{Country: CountryFrance, City: CityParis}
	if got := loc.WithCountry(CountryFrance); got.City != CityParis {
		t.Fatalf("same country cleared city: %+v", got)
	}
	if got := loc.WithCountry("ITALY"); got.City != "" || got.Country != "ITALY" {
		t.Fatalf("foreign country kept city: %+v", got)
	}
}

func TestUserResetAndEnterQuiz(t *testing.T) {
	u := NewUser(42)
	u.Location = Location{Country: CountryFrance, City: CityParis}
	u.EnterQuiz()
	u.CorrectCount, u.WrongCount, u.PendingAnswerID, u.Explanation = 3, 2, "B", "because"

	u.Reset()
	if u.Phase != PhaseOnboarding || u.CorrectCount != 0 || u.WrongCount != 0 {
		t.Fatalf("reset user = %+v", u)
	}
	if u.PendingAnswerID != "" || u.Explanation != "" || u.Location != (Location{}) {
		t.Fatalf("reset kept question state: %+v", u)
	}
}
