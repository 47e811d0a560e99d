package cmd

import (
	"fmt"
	"io"
	"os"

	"formatlink/pkg/errors"
	"formatlink/pkg/git"
	"formatlink/pkg/host"
	"formatlink/pkg/htmltext"
	"formatlink/pkg/linkfmt"
	"formatlink/pkg/logger"
	"formatlink/pkg/progress"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	copyFormatID string
	copyTitle    string
	copyContent  string
	copyHTML     bool
	copyPrompt   bool
	copyNotify   bool
	copyGit      bool
	copyRemote   string
)

var copyCmd = &cobra.Command{
	Use:   "copy [url]",
	Short: "Format a link and copy it to the clipboard",
	Long: `Format a link for one of the built-in dialects and copy it.

Without link text the format's bare-URL template is used. With --html the
text is read as an HTML fragment and flattened to Markdown first. Pass "-"
as --content to read it from stdin.`,
	Example: `  # Markdown link with a title
  formatlink copy https://go.dev --content "The Go site" --title "Go"

  # LaTeX, asking for the link text
  formatlink copy https://go.dev -f LaTeX --prompt

  # Link to the current git repository
  formatlink copy --git -f AsciiDoc

  # An HTML selection piped from another tool
  xclip -o -t text/html | formatlink copy https://go.dev --html --content -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, title := "", copyTitle
		switch {
		case copyGit:
			link, err := git.RepositoryLink(copyRemote)
			if err != nil {
				return errors.NewWithSuggestion(errors.ExitCodeInvalidArgument, err.Error(),
					"Run inside a repository with a remote, or pass the URL as an argument")
			}
			url = link.URL
			if title == "" {
				title = link.Title
			}
			if copyContent == "" {
				copyContent = link.Content
			}
		case len(args) == 1:
			url = args[0]
		default:
			return errors.InvalidArgument("url", "pass a URL or use --git")
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := readContent(copyContent, os.Stdin)
		if err != nil {
			return err
		}
		if copyHTML {
			md, err := htmltext.ToMarkdown(content)
			if err != nil {
				return errors.NewWithError(errors.ExitCodeInvalidArgument, "failed to convert HTML content", err)
			}
			content = md
		}

		data, err := a.copyData(copyFormatID, content, title, url, copyPrompt)
		if err != nil {
			return err
		}

		notifyOnCopy := a.cfg.Notify
		if cmd.Flags().Changed("notify") {
			notifyOnCopy = copyNotify
		}
		var prompter linkfmt.Prompter
		if copyPrompt {
			prompter = NewTerminalPrompter()
		}
		router := a.newRouter(prompter, notifyOnCopy)

		ctx, cancel := GetContext()
		defer cancel()

		var res any
		handle := func() error {
			res, err = router.Handle(ctx, host.Message{ExecuteCopy: &data})
			return err
		}
		if copyPrompt {
			err = handle()
		} else {
			err = progress.WithSpinner("Copying link", handle)
		}
		if err != nil {
			return errors.FromContext(ctx, err, "copy")
		}
		return printCopyResult(res.(host.CopyResult))
	},
}

func readContent(flag string, stdin io.Reader) (string, error) {
	if flag != "-" {
		return flag, nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.NewWithError(errors.ExitCodeFileOperation, "failed to read content from stdin", err)
	}
	return string(b), nil
}

func printCopyResult(res host.CopyResult) error {
	output := NewOutputWriter(outputFormat)
	if output.IsStructured() {
		return output.Write(res)
	}

	fmt.Println(res.Text)
	logger.Debug().Str("outcome", res.Outcome).Str("mime", res.MIME).Msg("copy finished")
	if res.Outcome == "noop" {
		_, _ = color.New(color.FgYellow).Fprintln(os.Stderr, "Nothing to copy")
	}
	return nil
}

func init() {
	copyCmd.Flags().StringVarP(&copyFormatID, "format", "f", "", "Format id (default from config)")
	copyCmd.Flags().StringVarP(&copyTitle, "title", "t", "", "Page title")
	copyCmd.Flags().StringVarP(&copyContent, "content", "c", "", "Link text (\"-\" reads stdin)")
	copyCmd.Flags().BoolVar(&copyHTML, "html", false, "Treat the link text as an HTML fragment")
	copyCmd.Flags().BoolVarP(&copyPrompt, "prompt", "p", false, "Ask for the link text before copying")
	copyCmd.Flags().BoolVarP(&copyNotify, "notify", "n", false, "Show a notification after copying")
	copyCmd.Flags().BoolVar(&copyGit, "git", false, "Link to the current git repository")
	copyCmd.Flags().StringVar(&copyRemote, "remote", "origin", "Git remote used with --git")
}
