package cmd

import (
	"fmt"
	"sort"

	"formatlink/pkg/config"
	"formatlink/pkg/errors"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change formatlink configuration",
	Long: `Show the effective configuration and where it lives, and manage stored
preferences.

Values come from the config file, then preferences saved with "config set",
then FORMATLINK_* environment variables, each layer overriding the previous.`,
}

// ConfigOutput represents the effective configuration for structured output
type ConfigOutput struct {
	Path        string            `json:"path" yaml:"path"`
	Database    string            `json:"database" yaml:"database"`
	Config      *config.Config    `json:"config" yaml:"config"`
	Preferences map[string]string `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	Store       map[string]any    `json:"store,omitempty" yaml:"store,omitempty"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := config.GetConfigPath()
		if err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
		}

		out := ConfigOutput{Path: path, Database: dbPath(a.cfg), Config: a.cfg}
		if a.store != nil {
			if out.Preferences, err = a.store.Preferences(); err != nil {
				return errors.StorageError("failed to read preferences", err)
			}
			if out.Store, err = a.store.GetStoreInfo(); err != nil {
				return errors.StorageError("failed to read store info", err)
			}
		}

		output := NewOutputWriter(outputFormat)
		if output.IsStructured() {
			return output.Write(out)
		}

		cfg := a.cfg
		fmt.Println("Current Configuration:")
		fmt.Println("======================")
		fmt.Printf("Config file: %s\n", path)
		fmt.Println()
		fmt.Printf("Default format: %s\n", cfg.Format)
		fmt.Printf("Notify: %t\n", cfg.Notify)
		fmt.Printf("Clipboard mode: %s\n", cfg.Clipboard.Mode)
		fmt.Printf("History: %s\n", func() string {
			if !cfg.History.Enabled {
				return "off"
			}
			return fmt.Sprintf("on (list limit %d)", cfg.History.Limit)
		}())
		fmt.Printf("Database: %s\n", out.Database)
		if cfg.PromptMessage != "" {
			fmt.Printf("Prompt message: %s\n", cfg.PromptMessage)
		}

		if len(out.Preferences) > 0 {
			fmt.Println()
			fmt.Println("Stored preferences:")
			keys := make([]string, 0, len(out.Preferences))
			for k := range out.Preferences {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %s = %s\n", k, out.Preferences[k])
			}
		}
		if out.Store != nil {
			fmt.Println()
			fmt.Printf("History entries: %v\n", out.Store["history_count"])
			fmt.Printf("Formats toggled: %v\n", out.Store["formats_toggled"])
			if oldest, _ := out.Store["oldest_history"].(string); oldest != "" {
				fmt.Printf("Oldest entry: %s\n", oldest)
			}
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
		}
		fmt.Println(path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := config.CheckPreferenceKey(args[0]); err != nil {
			return err
		}
		value, ok, err := a.store.Get(args[0])
		if err != nil {
			return errors.StorageError("failed to read preference", err)
		}
		if !ok {
			return errors.NewWithSuggestion(errors.ExitCodeInvalidArgument,
				fmt.Sprintf("preference '%s' is not set", args[0]),
				"Set it with: formatlink config set "+args[0]+" <value>")
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a preference",
	Long: `Store a preference that overrides the config file.

Keys: format (a format id), notify (true/false), prompt_message.`,
	Example: `  formatlink config set format LaTeX
  formatlink config set notify true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		value, err := a.setPreference(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := config.CheckPreferenceKey(args[0]); err != nil {
			return err
		}
		deleted, err := a.store.Delete(args[0])
		if err != nil {
			return errors.StorageError("failed to remove preference", err)
		}
		if !deleted {
			fmt.Printf("%s was not set\n", args[0])
			return nil
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// setPreference validates and stores one preference. Format ids are stored
// in their canonical spelling.
func (a *app) setPreference(key, value string) (string, error) {
	value, err := config.ValidatePreference(key, value)
	if err != nil {
		return "", err
	}
	if key == config.PrefFormat {
		spec, err := a.catalog.Resolve(value)
		if err != nil {
			return "", err
		}
		value = spec.ID
	}
	if err := a.store.Set(key, value); err != nil {
		return "", errors.StorageError("failed to save preference", err)
	}
	return value, nil
}
