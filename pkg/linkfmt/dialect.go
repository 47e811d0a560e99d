package linkfmt

import (
	"regexp"

	"formatlink/pkg/textconv"
)

const (
	MIMEPlain = "text/plain"
	MIMEHTML  = "text/html"
)

// Transform rewrites one field for a dialect. A nil Transform leaves the
// field untouched.
type Transform func(string) string

// Dialect is one row of the dispatch table: per-field transforms and the
// MIME type of the rendered result.
type Dialect struct {
	Content Transform
	Title   Transform
	URL     Transform
	MIME    string
}

var (
	closingBracket   = regexp.MustCompile(`\]`)
	bbcodeURLTags    = regexp.MustCompile(`(?i)\[/?url(=[^\]]*)?\]`)
	markdownBrackets = regexp.MustCompile(`[\[\]]`)
	doubleQuote      = regexp.MustCompile(`"`)
	mediaWikiChars   = regexp.MustCompile(`[\[\]'~<>{}=*#;:\-|]`)
	rstChars         = regexp.MustCompile("[`<>]")
	textileParens    = regexp.MustCompile(`[()]`)
)

// dialects is keyed by format id. Adding a dialect means adding a row.
var dialects = map[string]Dialect{
	"AsciiDoc": {
		Content: escape(closingBracket),
		URL:     encodeURL,
	},
	"BBCode": {
		Content: strip(bbcodeURLTags),
	},
	"BBCodeURL": {
		Content: strip(bbcodeURLTags),
	},
	"HTML": {
		Content: textconv.ToHTMLEntities,
		Title:   textconv.ToHTMLEntities,
		URL:     encodeURL,
	},
	"HTMLHyper": {
		Content: textconv.ToHTMLEntities,
		Title:   textconv.ToHTMLEntities,
		URL:     encodeURL,
		MIME:    MIMEHTML,
	},
	"LaTeX": {
		Content: textconv.ToLaTeXEscaped,
	},
	"Markdown": {
		Content: chain(textconv.ToHTMLEntities, escape(markdownBrackets)),
		Title:   chain(textconv.ToHTMLEntities, escape(doubleQuote)),
	},
	"MediaWiki": {
		Content: charRef(mediaWikiChars),
	},
	"reStructuredText": {
		Content: escape(rstChars),
	},
	"Textile": {
		Content: chain(charRef(textileParens), textconv.ToHTMLEntities),
	},
}

// DialectFor returns the row for id; unknown ids get the identity row.
func DialectFor(id string) Dialect {
	d, ok := dialects[id]
	if !ok {
		return Dialect{MIME: MIMEPlain}
	}
	if d.MIME == "" {
		d.MIME = MIMEPlain
	}
	return d
}

// MIMEType is text/html for the hyperlink dialect and text/plain otherwise.
func MIMEType(formatID string) string {
	return DialectFor(formatID).MIME
}

func (t Transform) apply(s string) string {
	if t == nil {
		return s
	}
	return t(s)
}

func chain(fns ...Transform) Transform {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

// The pattern helpers only fail on a nil pattern; a failed step yields ""
// so the copy continues with degraded content.

func escape(re *regexp.Regexp) Transform {
	return func(s string) string {
		out, _ := textconv.EscapeMatching(s, re)
		return out
	}
}

func strip(re *regexp.Regexp) Transform {
	return func(s string) string {
		out, _ := textconv.StripMatching(s, re)
		return out
	}
}

func charRef(re *regexp.Regexp) Transform {
	return func(s string) string {
		out, _ := textconv.ToNumericCharRef(s, re)
		return out
	}
}

func encodeURL(s string) string {
	out, _ := textconv.EncodeURLSpecialChars(s)
	return out
}
