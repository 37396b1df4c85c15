package task

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Groceries", Task{Title: "Groceries", Text: "<p>milk</p>"}.Label())
	assert.Equal(t, "milk eggs", Task{Title: "  ", Text: "<p>milk</p><p>eggs</p>"}.Label())

	long := Task{Text: "<p>" + strings.Repeat("a", 100) + "</p>"}.Label()
	assert.Len(t, []rune(long), labelWidth)
	assert.True(t, strings.HasSuffix(long, "…"))
}
