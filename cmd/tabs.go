package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"formatlink/pkg/errors"
	"formatlink/pkg/host"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/progress"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	tabsFormatID string
	tabsNotify   bool
)

// tabInput is one entry of a tabs file.
type tabInput struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

var tabsCmd = &cobra.Command{
	Use:   "tabs <file>",
	Short: "Copy a list of links in one format",
	Long: `Format every link in a JSON or YAML file and copy them as one block,
one link per line (HTML formats use <br /> between links). Pass "-" to read
JSON from stdin. Each entry has url, title and an optional content.`,
	Example: `  # Copy all links from a YAML file as reStructuredText
  formatlink tabs tabs.yaml -f reStructuredText

  # From a browser session export
  jq '[.windows[].tabs[] | {url, title}]' session.json | formatlink tabs -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tabs, err := readTabs(args[0])
		if err != nil {
			return err
		}
		if len(tabs) == 0 {
			return errors.InvalidArgument("file", "contains no links")
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		batch := linkfmt.TabsCopyData{AllTabs: make([]linkfmt.CopyData, 0, len(tabs))}
		for _, t := range tabs {
			data, err := a.copyData(tabsFormatID, t.Content, t.Title, t.URL, false)
			if err != nil {
				return err
			}
			batch.AllTabs = append(batch.AllTabs, data)
		}

		notifyOnCopy := a.cfg.Notify
		if cmd.Flags().Changed("notify") {
			notifyOnCopy = tabsNotify
		}
		router := a.newRouter(nil, notifyOnCopy)

		ctx, cancel := GetContext()
		defer cancel()

		var res any
		err = progress.WithSpinner(fmt.Sprintf("Copying %d tabs", len(batch.AllTabs)), func() error {
			res, err = router.Handle(ctx, host.Message{ExecuteCopyAllTabs: &batch})
			return err
		})
		if err != nil {
			return errors.FromContext(ctx, err, "copy tabs")
		}
		return printCopyResult(res.(host.CopyResult))
	},
}

func readTabs(path string) ([]tabInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to read tabs file", err)
	}

	var tabs []tabInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tabs)
	default:
		err = json.Unmarshal(data, &tabs)
	}
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeInvalidArgument, "failed to parse tabs file", err)
	}
	return tabs, nil
}

func init() {
	tabsCmd.Flags().StringVarP(&tabsFormatID, "format", "f", "", "Format id (default from config)")
	tabsCmd.Flags().BoolVarP(&tabsNotify, "notify", "n", false, "Show a notification after copying")
}
