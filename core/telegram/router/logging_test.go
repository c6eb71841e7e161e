package router

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type codedErr struct{}

func (codedErr) Error() string { return "boom" }
func (codedErr) Code() string  { return "upstream down" }

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Start":     "start",
		"":           "unknown",
		" show all ": "show_all",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(nil); got != "" {
		t.Fatalf("nil err code = %q", got)
	}
	if got := deriveErrorCode(codedErr{}); got != "UPSTREAM_DOWN" {
		t.Fatalf("coded err = %q", got)
	}
	if got := deriveErrorCode(&tele.Error{Code: 400}); got != "ERROR" {
		t.Fatalf("tele err = %q", got)
	}
	if got := deriveErrorCode(errors.New("x")); got != "ERRORSTRING" {
		t.Fatalf("plain err = %q", got)
	}
}
