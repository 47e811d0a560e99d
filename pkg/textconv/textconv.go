// Package textconv holds the pure string transforms used to prepare link
// text, titles and URLs for a target markup dialect.
//
// Soft failures never panic: pattern-driven helpers report ok=false for a nil
// pattern, URL helpers return "" or ok=false for input they cannot use.
package textconv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// JavaScript-style whitespace: ASCII space characters plus Unicode separators.
const spaceClass = `\s\v\p{Z}\x{FEFF}`

var whitespaceRun = regexp.MustCompile(`[` + spaceClass + `]+`)

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// StripMatching removes every match of re from s.
func StripMatching(s string, re *regexp.Regexp) (string, bool) {
	if re == nil {
		return "", false
	}
	return re.ReplaceAllString(s, ""), true
}

// EscapeMatching prefixes each single-character match of re with a backslash.
func EscapeMatching(s string, re *regexp.Regexp) (string, bool) {
	return replaceSingleChars(s, re, func(r rune, m string) string {
		return `\` + m
	})
}

// ToNumericCharRef replaces each single-character match of re with its
// decimal numeric character reference.
func ToNumericCharRef(s string, re *regexp.Regexp) (string, bool) {
	return replaceSingleChars(s, re, func(r rune, _ string) string {
		return "&#" + strconv.Itoa(int(r)) + ";"
	})
}

func replaceSingleChars(s string, re *regexp.Regexp, fn func(rune, string) string) (string, bool) {
	if re == nil {
		return "", false
	}
	out := re.ReplaceAllStringFunc(s, func(m string) string {
		r, size := utf8.DecodeRuneInString(m)
		if size != len(m) || r == utf8.RuneError {
			return m
		}
		return fn(r, m)
	})
	return out, true
}

var htmlSpecials = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;")

// ToHTMLEntities encodes & < > and " as named entities. An ampersand that
// already starts a character reference (&amp; &#39; &#x27;) is kept as is.
func ToHTMLEntities(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && !startsCharRef(s[i:]) {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(s[i])
	}
	return htmlSpecials.Replace(b.String())
}

// startsCharRef reports whether s begins with &name; &#123; or &#x1F;.
// A name is any run of ASCII letters and digits.
func startsCharRef(s string) bool {
	if len(s) < 3 || s[0] != '&' {
		return false
	}
	i := 1
	switch {
	case s[i] == '#' && i+1 < len(s) && (s[i+1] == 'x' || s[i+1] == 'X'):
		i += 2
		start := i
		for i < len(s) && isHex(s[i]) {
			i++
		}
		return i > start && i < len(s) && s[i] == ';'
	case s[i] == '#':
		i++
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i > start && i < len(s) && s[i] == ';'
	default:
		start := i
		for i < len(s) && (isAlpha(s[i]) || (s[i] >= '0' && s[i] <= '9')) {
			i++
		}
		return i > start && i < len(s) && s[i] == ';'
	}
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var (
	latexCommands = strings.NewReplacer(
		`\`, `\textbackslash`,
		`^`, `\textasciicircum`,
		`~`, `\textasciitilde`,
	)
	latexSpecials = regexp.MustCompile(`[%$#&_{}]`)
	latexBraces   = regexp.MustCompile(`\\(textbackslash|textasciicircum|textasciitilde)`)
)

// ToLaTeXEscaped escapes s for LaTeX text mode. The three command sequences
// are first written without braces so that escaping the special characters
// does not touch them; the braces are restored afterwards.
func ToLaTeXEscaped(s string) string {
	s = latexCommands.Replace(s)
	s = latexSpecials.ReplaceAllString(s, `\$0`)
	return latexBraces.ReplaceAllString(s, `\${1}{}`)
}

var urlUnsafe = regexp.MustCompile("[" + spaceClass + "<>\\[\\]'^`{|}]")

// EncodeURLComponent percent-encodes whitespace and < > [ ] ' ^ ` { | }
// inside one path, query or fragment segment. Everything else, including
// existing escapes, is left alone.
func EncodeURLComponent(part string) string {
	if part == "" {
		return ""
	}
	return urlUnsafe.ReplaceAllStringFunc(part, percentEncode)
}

func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		fmt.Fprintf(&b, "%%%02X", s[i])
	}
	return b.String()
}
