package message

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSubstituteSinglePass(t *testing.T) {
	got := Substitute("{a} and {b} and {missing}", map[string]string{
		"a": "{b}",
		"b": "x",
	})
	if got != "{b} and x and {missing}" {
		t.Fatalf("Substitute = %q", got)
	}
}

func TestSubstituteNoVars(t *testing.T) {
	if got := Substitute("keep {this}", nil); got != "keep {this}" {
		t.Fatalf("Substitute = %q", got)
	}
}

func TestDefaultTemplatesComplete(t *testing.T) {
	tpl, err := DefaultTemplates()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	for _, name := range names {
		if strings.TrimSpace(tpl[name]) == "" {
			t.Errorf("template %q is empty", name)
		}
	}
	if tpl[Error] != "Error processing your request." {
		t.Fatalf("error template = %q", tpl[Error])
	}
}

func TestLoadTemplatesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("processing: \"Thinking...\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tpl, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl[Processing] != "Thinking..." {
		t.Fatalf("processing = %q", tpl[Processing])
	}
	if tpl[Welcome] == "" {
		t.Fatal("defaults were dropped")
	}
}

func TestLoadTemplatesRejectsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("welcom: hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTemplates(path)
	if err == nil || !strings.Contains(err.Error(), "welcom") {
		t.Fatalf("err = %v, want unknown template error", err)
	}
}
