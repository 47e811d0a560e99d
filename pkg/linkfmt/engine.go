// Package linkfmt turns page data into a formatted link for one of the
// built-in markup dialects.
package linkfmt

import (
	"context"
	"strings"

	"formatlink/pkg/errors"
	"formatlink/pkg/logger"
	"formatlink/pkg/textconv"

	"golang.org/x/sync/errgroup"
)

const (
	PlaceholderContent = "%content%"
	PlaceholderTitle   = "%title%"
	PlaceholderURL     = "%url%"
)

// DefaultPromptMessage is shown when the user is asked to edit link text.
const DefaultPromptMessage = "Edit the link text"

// CopyData is one unit of content to convert. It is consumed once.
type CopyData struct {
	Content       string `json:"content" yaml:"content"`
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	FormatID      string `json:"formatId" yaml:"format_id"`
	FormatTitle   string `json:"formatTitle,omitempty" yaml:"format_title,omitempty"`
	PromptContent bool   `json:"promptContent,omitempty" yaml:"prompt_content,omitempty"`
	Template      string `json:"template" yaml:"template"`
	// TemplateAlt replaces Template when the final content is empty or
	// equals the URL. It is chosen after any prompt has run.
	TemplateAlt string `json:"templateAlt,omitempty" yaml:"template_alt,omitempty"`
}

// TabsCopyData is a batch copy of every open tab.
type TabsCopyData struct {
	AllTabs []CopyData `json:"allTabs" yaml:"all_tabs"`
}

// TabsOptions controls how per-tab results are joined.
type TabsOptions struct {
	// MIMEType overrides the MIME resolved from the first tab's format.
	MIMEType string
}

// Prompter asks the user to edit link text. An empty answer means "".
type Prompter interface {
	PromptContent(ctx context.Context, content, message string) (string, error)
}

// Engine renders CopyData through the dialect table.
type Engine struct {
	prompter Prompter
	message  string
}

type Option func(*Engine)

// WithPrompter sets the collaborator used for PromptContent requests.
func WithPrompter(p Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// WithPromptMessage overrides the message shown by the prompter.
func WithPromptMessage(msg string) Option {
	return func(e *Engine) { e.message = msg }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{message: DefaultPromptMessage}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rendered is a finished link with the MIME type it should be copied as.
type Rendered struct {
	Text        string
	MIME        string
	FormatTitle string
}

// Render is CreateLinkText plus the MIME type and notification label.
func (e *Engine) Render(ctx context.Context, data CopyData) (Rendered, error) {
	text, err := e.CreateLinkText(ctx, data)
	if err != nil {
		return Rendered{}, err
	}
	title := data.FormatTitle
	if title == "" {
		title = data.FormatID
	}
	return Rendered{Text: text, MIME: MIMEType(data.FormatID), FormatTitle: title}, nil
}

// CreateLinkText converts data into the dialect named by data.FormatID and
// substitutes the result into data.Template.
func (e *Engine) CreateLinkText(ctx context.Context, data CopyData) (string, error) {
	if strings.TrimSpace(data.FormatID) == "" {
		return "", errors.InvalidArgument("formatId", "must be a non-empty string")
	}
	if data.Template == "" {
		return "", errors.InvalidArgument("template", "must be a non-empty string")
	}

	content := textconv.CollapseWhitespace(data.Content)
	title := data.Title
	url := data.URL

	if data.PromptContent {
		edited, err := e.prompt(ctx, content)
		if err != nil {
			return "", err
		}
		content = edited
	}

	template := pickTemplate(data.Template, data.TemplateAlt, content, url)

	d := DialectFor(data.FormatID)
	content = d.Content.apply(content)
	title = d.Title.apply(title)
	url = d.URL.apply(url)

	logger.Debug().
		Str("format", data.FormatID).
		Str("mime", d.MIME).
		Msg("rendering link")

	return Substitute(template, content, title, url), nil
}

func (e *Engine) prompt(ctx context.Context, content string) (string, error) {
	if e.prompter == nil {
		return content, nil
	}
	edited, err := e.prompter.PromptContent(ctx, content, e.message)
	if err != nil {
		return "", err
	}
	return edited, nil
}

// Substitute replaces every placeholder in template with the trimmed field
// in a single pass, so placeholders inside inserted text stay literal.
func Substitute(template, content, title, url string) string {
	r := strings.NewReplacer(
		PlaceholderContent, strings.TrimSpace(content),
		PlaceholderTitle, strings.TrimSpace(title),
		PlaceholderURL, strings.TrimSpace(url),
	)
	return r.Replace(template)
}

// Separator joins per-tab results: an HTML line break for text/html.
func Separator(mime string) string {
	if mime == MIMEHTML {
		return "<br />\n"
	}
	return "\n"
}

// CreateTabsLinkText renders every tab independently, drops empty results
// and joins the rest in input order.
func (e *Engine) CreateTabsLinkText(ctx context.Context, items []CopyData, opts TabsOptions) (string, error) {
	if len(items) == 0 {
		return "", errors.InvalidArgument("allTabs", "must contain at least one tab")
	}

	results := make([]string, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			text, err := e.CreateLinkText(gctx, item)
			if err != nil {
				return err
			}
			results[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	mime := opts.MIMEType
	if mime == "" {
		mime = MIMEType(items[0].FormatID)
	}

	kept := results[:0]
	for _, r := range results {
		if r != "" {
			kept = append(kept, r)
		}
	}
	return strings.Join(kept, Separator(mime)), nil
}

// RenderTabs is CreateTabsLinkText plus MIME type and notification label.
func (e *Engine) RenderTabs(ctx context.Context, tabs TabsCopyData) (Rendered, error) {
	text, err := e.CreateTabsLinkText(ctx, tabs.AllTabs, TabsOptions{})
	if err != nil {
		return Rendered{}, err
	}
	first := tabs.AllTabs[0]
	title := first.FormatTitle
	if title == "" {
		title = first.FormatID
	}
	return Rendered{Text: text, MIME: MIMEType(first.FormatID), FormatTitle: title}, nil
}
