// Package message renders the bot's outbound texts from named templates.
// Templates hold raw text; MarkdownV2 escaping is applied by the chat sender.
package message

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Template names.
const (
	Welcome    = "welcome"
	CityPrompt = "city-prompt"
	Score      = "score"
	Question   = "question"
	Processing = "processing"
	Correct    = "correct"
	Wrong      = "wrong"
	Error      = "error"
	AnswerHint = "answer-hint"
)

var names = []string{Welcome, CityPrompt, Score, Question, Processing, Correct, Wrong, Error, AnswerHint}

//go:embed templates.yaml
var defaultTemplates []byte

// Templates maps template names to raw text.
type Templates map[string]string

// DefaultTemplates returns the embedded templates.
func DefaultTemplates() (Templates, error) {
	t, err := parse(defaultTemplates)
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	if missing := lo.Without(names, lo.Keys(map[string]string(t))...); len(missing) > 0 {
		return nil, fmt.Errorf("embedded templates: missing %s", strings.Join(missing, ", "))
	}
	return t, nil
}

// LoadTemplates returns the embedded templates overlaid with the YAML file at path.
// An empty path yields the defaults. Unknown template names are rejected.
func LoadTemplates(path string) (Templates, error) {
	t, err := DefaultTemplates()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	overrides, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("templates file %s: %w", path, err)
	}
	unknown := lo.Without(lo.Keys(map[string]string(overrides)), names...)
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("templates file %s: unknown templates: %s", path, strings.Join(unknown, ", "))
	}
	for name, text := range overrides {
		if text == "" {
			return nil, fmt.Errorf("templates file %s: template %q is empty", path, name)
		}
		t[name] = text
	}
	return t, nil
}

func parse(data []byte) (Templates, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML templates: %w", err)
	}
	return lo.MapValues(raw, func(v string, _ string) string {
		return strings.TrimSpace(v)
	}), nil
}

// Substitute replaces each {key} in text with its value in a single pass.
// Replacement text is never rescanned and placeholders without a value are kept verbatim.
func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	keys := lo.Keys(vars)
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
