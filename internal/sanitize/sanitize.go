// Package sanitize normalizes free text before it enters a task.
//
// Titles are plain text: markup is stripped, entities are decoded back to
// characters, whitespace runs collapse and the result is trimmed and capped.
// Descriptions are rich HTML and are only filtered when Rich is enabled.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const DefaultMaxTitle = 120

// maxTitlePasses bounds nested entity encodings like &amp;lt;b&amp;gt;.
const maxTitlePasses = 8

type Sanitizer struct {
	MaxTitle int
	// Rich enables filtering descriptions through a user-content policy.
	Rich bool

	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func New(maxTitle int, rich bool) *Sanitizer {
	if maxTitle <= 0 {
		maxTitle = DefaultMaxTitle
	}
	return &Sanitizer{
		MaxTitle: maxTitle,
		Rich:     rich,
		strict:   bluemonday.StrictPolicy(),
		ugc:      bluemonday.UGCPolicy(),
	}
}

// Title returns raw as plain text. Decoding entities can surface new
// markup, so passes repeat until the output is stable; Title(Title(x))
// always equals Title(x).
func (s *Sanitizer) Title(raw string) string {
	out := s.plain(raw)
	for i := 0; i < maxTitlePasses; i++ {
		next := s.plain(out)
		if next == out {
			return out
		}
		out = next
	}
	return strings.NewReplacer("<", "", ">", "").Replace(out)
}

func (s *Sanitizer) plain(raw string) string {
	out := html.UnescapeString(s.strict.Sanitize(raw))
	out = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, out)
	out = strings.Join(strings.Fields(out), " ")
	if r := []rune(out); len(r) > s.MaxTitle {
		out = strings.TrimSpace(string(r[:s.MaxTitle]))
	}
	return out
}

// Description returns raw unchanged unless Rich is set, in which case
// scripts, handlers and unknown elements are removed. Leading and trailing
// whitespace is trimmed either way.
func (s *Sanitizer) Description(raw string) string {
	raw = strings.TrimSpace(raw)
	if !s.Rich {
		return raw
	}
	return strings.TrimSpace(s.ugc.Sanitize(raw))
}

// Tag trims a tag label and collapses inner whitespace.
func Tag(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
