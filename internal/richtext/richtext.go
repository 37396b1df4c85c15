// Package richtext bridges terminal input and the HTML stored in a task's
// text field.
package richtext

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	tagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	blockEnd   = regexp.MustCompile(`(?i)</(p|li|div|h[1-6])>|<br\s*/?>`)

	md = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	strip = bluemonday.StrictPolicy()
)

// LooksLikeHTML reports whether s already carries markup.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// FromMarkdown renders markdown source to HTML.
func FromMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Normalize turns editor input into stored HTML. Input that already holds
// markup, such as a description being re-edited, is kept as authored.
func Normalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || LooksLikeHTML(input) {
		return input, nil
	}
	return FromMarkdown(input)
}

// Preview flattens HTML to a single line of plain text.
func Preview(s string, limit int) string {
	s = blockEnd.ReplaceAllString(s, "$0 ")
	s = html.UnescapeString(strip.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); limit > 0 && len(r) > limit {
		if limit <= 1 {
			return "…"
		}
		s = string(r[:limit-1]) + "…"
	}
	return s
}
