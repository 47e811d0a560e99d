package cmd

import (
	"fmt"

	"formatlink/pkg/errors"
	"formatlink/pkg/filter"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	formatsFilter    string
	formatsMatchMode string
	formatsEnabled   bool
)

// FormatOutput represents a format for structured output
type FormatOutput struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	MIME        string `json:"mime" yaml:"mime"`
	Template    string `json:"template" yaml:"template"`
	TemplateAlt string `json:"templateAlt,omitempty" yaml:"template_alt,omitempty"`
}

var formatsCmd = &cobra.Command{
	Use:     "formats",
	Aliases: []string{"format"},
	Short:   "List and toggle link formats",
}

var formatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available formats",
	Example: `  # All formats
  formatlink formats list

  # Only enabled formats matching "code"
  formatlink formats list --enabled --filter code --match fuzzy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := filter.ParseMode(formatsMatchMode)
		if err != nil {
			return errors.InvalidArgument("match", err.Error())
		}
		if formatsFilter != "" && mode == filter.FilterModeNone {
			mode = filter.FilterModeContains
		}
		f, err := filter.NewStringFilter(formatsFilter, mode)
		if err != nil {
			return errors.InvalidArgument("filter", err.Error())
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		formats := filterFormats(a.catalog.List(), f, formatsEnabled)
		logger.Debug().Int("count", len(formats)).Msg("listing formats")

		output := NewOutputWriter(outputFormat)
		if output.IsStructured() {
			outs := make([]FormatOutput, 0, len(formats))
			for _, spec := range formats {
				outs = append(outs, mapToFormatOutput(spec))
			}
			return output.Write(outs)
		}

		green := color.New(color.FgGreen)
		faint := color.New(color.Faint)
		for _, spec := range formats {
			marker := faint.Sprint("-")
			if spec.Enabled {
				marker = green.Sprint("✓")
			}
			def := ""
			if spec.ID == a.cfg.Format {
				def = " (default)"
			}
			fmt.Printf("%s %-18s %s%s\n", marker, spec.ID, spec.DisplayTitle(), def)
			fmt.Printf("    %s\n", spec.Template)
		}
		return nil
	},
}

var formatsEnableCmd = &cobra.Command{
	Use:   "enable <format>",
	Short: "Enable a format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFormatEnabled(args[0], true)
	},
}

var formatsDisableCmd = &cobra.Command{
	Use:   "disable <format>",
	Short: "Disable a format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFormatEnabled(args[0], false)
	},
}

func setFormatEnabled(id string, enabled bool) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	spec, err := a.catalog.Resolve(id)
	if err != nil {
		return err
	}
	if err := a.store.SetFormatEnabled(spec.ID, enabled); err != nil {
		return errors.StorageError("failed to save format state", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	logger.Info().Str("format", spec.ID).Bool("enabled", enabled).Msg("format toggled")
	fmt.Printf("Format %s %s\n", spec.ID, state)
	return nil
}

func filterFormats(formats []linkfmt.FormatSpec, f *filter.StringFilter, onlyEnabled bool) []linkfmt.FormatSpec {
	filtered := []linkfmt.FormatSpec{}
	for _, spec := range formats {
		if onlyEnabled && !spec.Enabled {
			continue
		}
		if !f.MatchAny(spec.ID, spec.Title, spec.MenuLabel) {
			continue
		}
		filtered = append(filtered, spec)
	}
	return filtered
}

func mapToFormatOutput(spec linkfmt.FormatSpec) FormatOutput {
	return FormatOutput{
		ID:          spec.ID,
		Title:       spec.DisplayTitle(),
		Enabled:     spec.Enabled,
		MIME:        linkfmt.MIMEType(spec.ID),
		Template:    spec.Template,
		TemplateAlt: spec.TemplateAlt,
	}
}

func init() {
	formatsListCmd.Flags().StringVar(&formatsFilter, "filter", "", "Only formats whose id or title matches")
	formatsListCmd.Flags().StringVar(&formatsMatchMode, "match", "contains", "Match mode for --filter (exact, contains, regex, fuzzy)")
	formatsListCmd.Flags().BoolVar(&formatsEnabled, "enabled", false, "Only enabled formats")
}
