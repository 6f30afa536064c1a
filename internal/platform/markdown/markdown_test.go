package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiteracyBridge/utilities-sub000/internal/platform/markdown"
)

func TestFrontmatterRoundTrip(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter(map[string]any{"talkingbookid": "B-0001", "errors": 3}, "# Report\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rendered, "---\n"))

	meta, body, err := markdown.SplitFrontmatter(strings.ReplaceAll(rendered, "\n", "\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "B-0001", meta["talkingbookid"])
	assert.Equal(t, 3, meta["errors"])
	assert.Equal(t, "\n# Report\n", body)
}

func TestSplitFrontmatterWithoutBlock(t *testing.T) {
	t.Parallel()
	meta, body, err := markdown.SplitFrontmatter("plain text\n")
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Equal(t, "plain text\n", body)

	_, _, err = markdown.SplitFrontmatter("---\nkey: value\n")
	assert.Error(t, err)
}

func TestReplaceManagedBlock(t *testing.T) {
	t.Parallel()
	const begin, end = "<!-- b -->", "<!-- e -->"

	assert.Equal(t, begin+"\nv1\n"+end+"\n", markdown.ReplaceManagedBlock("", begin, end, "v1"))
	assert.Equal(t, "notes\n\n"+begin+"\nv1\n"+end+"\n", markdown.ReplaceManagedBlock("notes\n", begin, end, "v1"))

	body := "intro\n" + begin + "\nold\n" + end + "\noutro\n"
	assert.Equal(t, "intro\n"+begin+"\nnew\n"+end+"\noutro\n", markdown.ReplaceManagedBlock(body, begin, end, "new"))
}
