package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleStripsMarkup(t *testing.T) {
	s := New(0, false)
	cases := map[string]string{
		"  Buy milk  ":                       "Buy milk",
		"<b>Bold</b> move":                   "Bold move",
		"<script>alert(1)</script>Pay rent":  "Pay rent",
		"Tom & Jerry":                        "Tom & Jerry",
		"a\tb\nc":                            "a b c",
		"":                                   "",
		`<a href="javascript:x()">link</a>`: "link",
	}
	for in, want := range cases {
		assert.Equal(t, want, s.Title(in), "input %q", in)
	}
}

func TestTitleIsCapped(t *testing.T) {
	s := New(5, false)
	assert.Equal(t, "abcde", s.Title("abcdefgh"))
	assert.Equal(t, "héllo", s.Title("héllo wörld"))
	assert.Equal(t, DefaultMaxTitle, len(New(-1, false).Title(strings.Repeat("x", 500))))
}

func TestDescriptionIsVerbatimByDefault(t *testing.T) {
	s := New(0, false)
	in := `<p onclick="x()">hi <b>there</b></p>`
	assert.Equal(t, in, s.Description("  "+in+"\n"))
}

func TestRichDescriptionPolicy(t *testing.T) {
	s := New(0, true)
	out := s.Description(`<p onclick="x()">hi <b>there</b></p><script>bad()</script>`)
	assert.Equal(t, "<p>hi <b>there</b></p>", out)
}

func TestTag(t *testing.T) {
	assert.Equal(t, "This Week", Tag("  This   Week "))
	assert.Equal(t, "", Tag("   "))
}

func TestTitleIsIdempotent(t *testing.T) {
	s := New(0, false)
	inputs := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&lt;b&gt;Budget&lt;/b&gt; review",
		"&amp;lt;i&amp;gt;nested&amp;lt;/i&amp;gt;",
		"a < b & c > d",
		"Tom &amp; Jerry",
		"<b>x</b>\t&lt;em&gt;y&lt;/em&gt;",
	}
	for _, in := range inputs {
		once := s.Title(in)
		assert.Equal(t, once, s.Title(once), "input %q", in)
		assert.NotRegexp(t, `<[a-zA-Z/]`, once, "input %q", in)
	}
	assert.Equal(t, "Budget review", s.Title("&lt;b&gt;Budget&lt;/b&gt; review"))
	assert.Empty(t, s.Title("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "Tom & Jerry", s.Title("Tom &amp; Jerry"))
}

func TestTitleIdempotentAtCap(t *testing.T) {
	s := New(12, false)
	in := "&lt;b&gt;" + strings.Repeat("word ", 10)
	once := s.Title(in)
	assert.LessOrEqual(t, len([]rune(once)), 12)
	assert.Equal(t, once, s.Title(once))
}
