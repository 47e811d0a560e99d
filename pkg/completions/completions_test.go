package completions

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteFormatIDs(t *testing.T) {
	c := NewCompleter()

	got, directive := c.CompleteFormatIDs(nil, nil, "ma")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("Expected NoFileComp directive, got %v", directive)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "Markdown\t") {
		t.Errorf("Expected only Markdown, got %v", got)
	}

	all, _ := c.CompleteFormatIDs(nil, nil, "")
	if len(all) < 10 {
		t.Errorf("Expected every built-in format, got %d", len(all))
	}
}

func TestCompleteFormatArg_OnlyFirstArg(t *testing.T) {
	c := NewCompleter()

	got, _ := c.CompleteFormatArg(nil, []string{"HTML"}, "")
	if len(got) != 0 {
		t.Errorf("Expected no completions after the first argument, got %v", got)
	}
}

func TestCompleteMatchMode(t *testing.T) {
	c := NewCompleter()

	got, _ := c.CompleteMatchMode(nil, nil, "f")
	if len(got) != 1 || got[0] != "fuzzy\tCharacters in order" {
		t.Errorf("Unexpected completions: %v", got)
	}
}

func TestCompletePreference(t *testing.T) {
	c := NewCompleter()
	set := &cobra.Command{Use: "set"}

	keys, _ := c.CompletePreference(set, nil, "")
	if strings.Join(keys, ",") != "format,notify,prompt_message" {
		t.Errorf("Unexpected keys: %v", keys)
	}

	formats, _ := c.CompletePreference(set, []string{"format"}, "LaT")
	if len(formats) != 1 || !strings.HasPrefix(formats[0], "LaTeX\t") {
		t.Errorf("Expected LaTeX, got %v", formats)
	}

	bools, _ := c.CompletePreference(set, []string{"notify"}, "t")
	if len(bools) != 1 || bools[0] != "true" {
		t.Errorf("Expected true, got %v", bools)
	}

	get := &cobra.Command{Use: "get"}
	if got, _ := c.CompletePreference(get, []string{"format"}, ""); len(got) != 0 {
		t.Errorf("Expected nothing after the key for get, got %v", got)
	}
}
