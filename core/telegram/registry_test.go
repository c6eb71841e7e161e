package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryLookupCommand(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", Command{Description: "Start over", Handler: noop, Aliases: []string{"restart"}})
	reg.RegisterCommand("/score", Command{Description: "Show score", Handler: noop})

	cases := map[string]string{
		"/start":          "/start",
		"/start@road_bot": "/start",
		"/score now":      "/score",
		"restart":         "/start",
	}
	for text, want := range cases {
		key, _, ok := reg.LookupCommand(text)
		if !ok || key != want {
			t.Errorf("LookupCommand(%q) = %q, %v; want %q", text, key, ok, want)
		}
	}
	if _, _, ok := reg.LookupCommand("A"); ok {
		t.Fatal("plain text must not resolve to a command")
	}
}

func TestRegistrySkipsInvalidCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", Command{Description: "x", Handler: noop})
	reg.RegisterCommand("/nodesc", Command{Handler: noop})
	reg.RegisterCommand("/ok", Command{Description: "ok", Handler: noop})
	reg.RegisterCommand("/ok", Command{Description: "dup", Handler: noop})

	if got := len(reg.Commands()); got != 1 {
		t.Fatalf("commands = %d, want 1", got)
	}
	if reg.Commands()["/ok"].Description != "ok" {
		t.Fatal("duplicate registration must keep the first command")
	}
}

func TestRegistryListCommandsHidesHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", Command{Description: "Start", Handler: noop})
	reg.RegisterCommand("/debug", Command{Description: "Debug", Handler: noop, Hidden: true})

	list := reg.ListCommands(true)
	if len(list) != 1 || list[0].Text != "start" {
		t.Fatalf("visible commands = %+v", list)
	}
	if all := reg.ListCommands(false); len(all) != 2 || all[0].Text != "debug" {
		t.Fatalf("all commands = %+v", all)
	}
}
