package format

import "testing"

func TestEscapeMarkdownV2EachReserved(t *testing.T) {
	for _, r := range MarkdownV2Reserved {
		in := "a" + string(r) + "b"
		want := "a\\" + string(r) + "b"
		if got := EscapeMarkdownV2(in); got != want {
			t.Errorf("EscapeMarkdownV2(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeMarkdownV2LeavesBoldAndText(t *testing.T) {
	in := "🚗 *Welcome to RoadBuddy AI*"
	if got := EscapeMarkdownV2(in); got != in {
		t.Fatalf("EscapeMarkdownV2(%q) = %q", in, got)
	}
}

func TestEscapeMarkdownV2Sentence(t *testing.T) {
	got := EscapeMarkdownV2("A) Stop. Yield (always)!")
	want := `A\) Stop\. Yield \(always\)\!`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2TwiceDoubleEscapes(t *testing.T) {
	once := EscapeMarkdownV2("1.5")
	twice := EscapeMarkdownV2(once)
	if once != `1\.5` {
		t.Fatalf("once = %q", once)
	}
	if twice != `1\\\.5` {
		t.Fatalf("twice = %q", twice)
	}
}
