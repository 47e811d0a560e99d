package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"formatlink/pkg/config"
	"formatlink/pkg/errors"
	"formatlink/pkg/filter"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/store"
)

type answerPrompter string

func (a answerPrompter) PromptContent(context.Context, string, string) (string, error) {
	return string(a), nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	catalog, err := linkfmt.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}
	m, err := store.NewManager(filepath.Join(t.TempDir(), "formatlink.db"))
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}
	a := &app{cfg: config.Defaults(), catalog: catalog, store: m}
	t.Cleanup(a.Close)
	return a
}

func TestOutputWriter(t *testing.T) {
	tests := []struct {
		format     string
		want       OutputFormat
		structured bool
		contains   string
	}{
		{"json", FormatJSON, true, `"id": "Markdown"`},
		{"yaml", FormatYAML, true, "id: Markdown"},
		{"table", FormatTable, false, ""},
		{"bogus", FormatTable, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewOutputWriter(tt.format)
			w.SetWriter(&buf)

			if w.GetFormat() != tt.want {
				t.Errorf("Expected format %s, got %s", tt.want, w.GetFormat())
			}
			if w.IsStructured() != tt.structured {
				t.Errorf("Expected structured=%v", tt.structured)
			}
			if err := w.Write(FormatOutput{ID: "Markdown", Template: "[%content%](%url%)"}); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			if tt.contains == "" && buf.Len() != 0 {
				t.Errorf("Expected no output for table format, got %q", buf.String())
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("Expected %q in output, got %q", tt.contains, buf.String())
			}
		})
	}
}

func TestReadTabs(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "tabs.json")
	yamlPath := filepath.Join(dir, "tabs.yaml")

	if err := os.WriteFile(jsonPath, []byte(`[{"url":"https://a.test","title":"A"},{"url":"https://b.test","content":"B"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("- url: https://a.test\n  title: A\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tabs, err := readTabs(jsonPath)
	if err != nil {
		t.Fatalf("readTabs(json) failed: %v", err)
	}
	if len(tabs) != 2 || tabs[1].Content != "B" {
		t.Errorf("Unexpected tabs: %+v", tabs)
	}

	tabs, err = readTabs(yamlPath)
	if err != nil {
		t.Fatalf("readTabs(yaml) failed: %v", err)
	}
	if len(tabs) != 1 || tabs[0].Title != "A" {
		t.Errorf("Unexpected tabs: %+v", tabs)
	}

	if _, err := readTabs(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFilterFormats(t *testing.T) {
	catalog, err := linkfmt.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}

	tests := []struct {
		name        string
		pattern     string
		mode        filter.FilterMode
		onlyEnabled bool
		wantIDs     []string
	}{
		{name: "exact", pattern: "latex", mode: filter.FilterModeExact, wantIDs: []string{"LaTeX"}},
		{name: "contains bbcode", pattern: "bbcode", mode: filter.FilterModeContains, wantIDs: []string{"BBCode", "BBCodeURL"}},
		{name: "enabled only", pattern: "bbcode", mode: filter.FilterModeContains, onlyEnabled: true, wantIDs: []string{"BBCode"}},
		{name: "regex", pattern: "^HTML", mode: filter.FilterModeRegex, wantIDs: []string{"HTML", "HTMLHyper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := filter.NewStringFilter(tt.pattern, tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			got := filterFormats(catalog.List(), f, tt.onlyEnabled)
			ids := make([]string, 0, len(got))
			for _, spec := range got {
				ids = append(ids, spec.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("Expected %v, got %v", tt.wantIDs, ids)
			}
		})
	}
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer
	p := &TerminalPrompter{In: strings.NewReader("  new text  \n"), Out: &out}

	got, err := p.PromptContent(context.Background(), "old", "Edit the link text")
	if err != nil {
		t.Fatalf("PromptContent() failed: %v", err)
	}
	if got != "new text" {
		t.Errorf("Expected 'new text', got '%s'", got)
	}
	if !strings.Contains(out.String(), "current: old") {
		t.Errorf("Expected current content in prompt, got %q", out.String())
	}

	p = &TerminalPrompter{In: strings.NewReader(""), Out: &out}
	got, err = p.PromptContent(context.Background(), "old", "Edit")
	if err != nil || got != "" {
		t.Errorf("Expected empty answer on EOF, got %q, %v", got, err)
	}
}

func TestReadContent(t *testing.T) {
	got, err := readContent("plain", strings.NewReader("ignored"))
	if err != nil || got != "plain" {
		t.Errorf("readContent(plain) = %q, %v", got, err)
	}

	got, err = readContent("-", strings.NewReader("<b>from stdin</b>"))
	if err != nil || got != "<b>from stdin</b>" {
		t.Errorf("readContent(-) = %q, %v", got, err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"ümlaute", 3, "üm…"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCopyData_PromptedContentIsKept(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name    string
		content string
		prompt  bool
		answer  string
		want    string
	}{
		{name: "no content", want: "<https://go.dev>"},
		{name: "prompt without content", prompt: true, answer: "Edited text", want: `[Edited text](https://go.dev "Go")`},
		{name: "content", content: "Go", want: `[Go](https://go.dev "Go")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := a.copyData("Markdown", tt.content, "Go", "https://go.dev", tt.prompt)
			if err != nil {
				t.Fatalf("copyData() failed: %v", err)
			}
			engine := linkfmt.NewEngine(linkfmt.WithPrompter(answerPrompter(tt.answer)))
			got, err := engine.CreateLinkText(context.Background(), data)
			if err != nil {
				t.Fatalf("CreateLinkText() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCopyData_DisabledFormat(t *testing.T) {
	a := newTestApp(t)

	_, err := a.copyData("BBCodeURL", "x", "", "https://go.dev", false)
	if !errors.IsExitCode(err, errors.ExitCodeInvalidArgument) {
		t.Errorf("Expected invalid argument for a disabled format, got %v", err)
	}
}

func TestSetPreference(t *testing.T) {
	t.Setenv("FORMATLINK_FORMAT", "")
	t.Setenv("FORMATLINK_NOTIFY", "")
	a := newTestApp(t)

	got, err := a.setPreference(config.PrefFormat, "latex")
	if err != nil {
		t.Fatalf("setPreference(format) failed: %v", err)
	}
	if got != "LaTeX" {
		t.Errorf("Expected canonical id 'LaTeX', got '%s'", got)
	}
	if _, err := a.setPreference(config.PrefNotify, "yes"); err == nil {
		t.Error("Expected error for a non-boolean notify value")
	}
	if _, err := a.setPreference(config.PrefFormat, "nope"); err == nil {
		t.Error("Expected error for an unknown format")
	}
	if _, err := a.setPreference(config.PrefNotify, "1"); err != nil {
		t.Fatalf("setPreference(notify) failed: %v", err)
	}

	prefs, err := a.store.Preferences()
	if err != nil {
		t.Fatalf("Preferences() failed: %v", err)
	}
	cfg := config.Defaults()
	config.ApplyPreferences(cfg, prefs)
	if cfg.Format != "LaTeX" || !cfg.Notify {
		t.Errorf("Expected stored preferences to apply, got format=%s notify=%v", cfg.Format, cfg.Notify)
	}

	data, err := a.copyData("", "Go", "", "https://go.dev", false)
	if err != nil {
		t.Fatalf("copyData() failed: %v", err)
	}
	if data.FormatID != "Markdown" {
		t.Errorf("Expected the app's own config to be untouched, got %s", data.FormatID)
	}
}
