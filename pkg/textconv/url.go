package textconv

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Tabs and newlines are dropped before parsing, as browsers do.
var urlControlChars = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// Schemes whose empty path is normalised to "/".
var hierarchicalSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ws": true, "wss": true, "file": true,
}

// EncodeURLSpecialChars percent-encodes the path, query and fragment of an
// absolute URL independently, keeping the scheme and host as the base.
// File URLs keep "file://" as their base. Relative or unparsable input
// reports ok=false.
//
// User info is not part of the base and is dropped.
func EncodeURLSpecialChars(raw string) (string, bool) {
	raw = urlControlChars.Replace(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)

	rest := raw[len(u.Scheme)+1:]

	var base string
	switch {
	case u.Opaque != "":
		base = scheme + ":"
	case scheme == "file":
		base = "file://"
		rest = strings.TrimPrefix(rest, "//")
		rest = rest[authorityEnd(rest):]
	case strings.HasPrefix(rest, "//"):
		if u.Host == "" {
			return "", false
		}
		base = scheme + "://" + strings.ToLower(u.Host)
		rest = rest[2:]
		rest = rest[authorityEnd(rest):]
	default:
		base = scheme + ":"
	}

	path, query, fragment := splitRest(rest)
	if path == "" && u.Opaque == "" && hierarchicalSchemes[scheme] {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString(EncodeURLComponent(path))
	if query != "" {
		b.WriteString("?")
		b.WriteString(EncodeURLComponent(query))
	}
	if fragment != "" {
		b.WriteString("#")
		b.WriteString(EncodeURLComponent(fragment))
	}
	return b.String(), true
}

// authorityEnd returns the index where the authority in s stops.
func authorityEnd(s string) int {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		return i
	}
	return len(s)
}

func splitRest(rest string) (path, query, fragment string) {
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, fragment = rest[:i], rest[i+1:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, query = rest[:i], rest[i+1:]
	}
	return rest, query, fragment
}

// DecodeHTMLEntities reverses ToHTMLEntities and any other character
// references in s.
func DecodeHTMLEntities(s string) string {
	return html.UnescapeString(s)
}
