package completions

import (
	"fmt"
	"strings"
	"sync"

	"formatlink/pkg/config"
	"formatlink/pkg/linkfmt"

	"github.com/spf13/cobra"
)

type Completer struct {
	mu      sync.Mutex
	catalog *linkfmt.Catalog
	load    func() (*linkfmt.Catalog, error)
}

func NewCompleter() *Completer {
	return &Completer{load: linkfmt.LoadCatalog}
}

func (c *Completer) formats() []linkfmt.FormatSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		cat, err := c.load()
		if err != nil {
			return nil
		}
		c.catalog = cat
	}
	return c.catalog.List()
}

// CompleteFormatIDs completes format ids with their titles as descriptions.
func (c *Completer) CompleteFormatIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	items := []string{}
	for _, f := range c.formats() {
		items = append(items, fmt.Sprintf("%s\t%s", f.ID, f.DisplayTitle()))
	}
	return c.filterPrefix(items, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// CompleteFormatArg completes the single format argument of enable/disable.
func (c *Completer) CompleteFormatArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.CompleteFormatIDs(cmd, args, toComplete)
}

// CompletePreference completes the key of config get/set/unset and, for
// "set format", the value.
func (c *Completer) CompletePreference(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch {
	case len(args) == 0:
		return c.filterPrefix(config.PreferenceKeys(), toComplete), cobra.ShellCompDirectiveNoFileComp
	case len(args) == 1 && cmd.Name() == "set" && args[0] == config.PrefFormat:
		return c.CompleteFormatIDs(cmd, args, toComplete)
	case len(args) == 1 && cmd.Name() == "set" && args[0] == config.PrefNotify:
		return c.filterPrefix([]string{"true", "false"}, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteOutput(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	outputs := []string{
		"table\tHuman-readable output",
		"json\tIndented JSON",
		"yaml\tYAML",
	}
	return c.filterPrefix(outputs, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteMatchMode(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	modes := []string{"exact", "contains", "regex", "fuzzy"}
	results := c.filterPrefix(modes, toComplete)

	for i, mode := range results {
		results[i] = fmt.Sprintf("%s\t%s", mode, getMatchModeDescription(mode))
	}

	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteLogLevel(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	levels := []string{"debug", "info", "warn", "error", "disabled"}
	return c.filterPrefix(levels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) filterPrefix(items []string, prefix string) []string {
	var result []string
	for _, item := range items {
		itemName := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(itemName), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

func getMatchModeDescription(mode string) string {
	switch mode {
	case "exact":
		return "Whole id, ignoring case"
	case "contains":
		return "Substring, ignoring case"
	case "regex":
		return "Go regular expression"
	case "fuzzy":
		return "Characters in order"
	default:
		return ""
	}
}

func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	rootCmd.RegisterFlagCompletionFunc("output", completer.CompleteOutput)
	rootCmd.RegisterFlagCompletionFunc("log-level", completer.CompleteLogLevel)

	for _, path := range [][]string{{"copy"}, {"tabs"}, {"history", "list"}} {
		c, _, err := rootCmd.Find(path)
		if err == nil && c != nil && c != rootCmd {
			c.RegisterFlagCompletionFunc("format", completer.CompleteFormatIDs)
		}
	}

	formatsListCmd, _, err := rootCmd.Find([]string{"formats", "list"})
	if err == nil && formatsListCmd != nil {
		formatsListCmd.RegisterFlagCompletionFunc("match", completer.CompleteMatchMode)
	}

	for _, path := range [][]string{{"formats", "enable"}, {"formats", "disable"}} {
		c, _, err := rootCmd.Find(path)
		if err == nil && c != nil && c != rootCmd {
			c.ValidArgsFunction = completer.CompleteFormatArg
		}
	}

	for _, path := range [][]string{{"config", "get"}, {"config", "set"}, {"config", "unset"}} {
		c, _, err := rootCmd.Find(path)
		if err == nil && c != nil && c != rootCmd {
			c.ValidArgsFunction = completer.CompletePreference
		}
	}
}
