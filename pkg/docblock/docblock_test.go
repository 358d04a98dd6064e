package docblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantShort string
		wantLong  string
		wantTags  []Tag
	}{
		{
			name:      "single line block comment with tags",
			text:      "/** Short. @restdoc-query foo bar @restdoc-label public */",
			wantShort: "Short.",
			wantTags: []Tag{
				{Name: "restdoc-query", Content: "foo bar"},
				{Name: "restdoc-label", Content: "public"},
			},
		},
		{
			name: "multi line block comment",
			text: `/**
 * Lists users.
 *
 * Supports paging and
 * filtering by status.
 *
 * @restdoc-field int $id Identifier
 * @restdoc-field string $name
 *   Display name
 */`,
			wantShort: "Lists users.",
			wantLong:  "Supports paging and\nfiltering by status.",
			wantTags: []Tag{
				{Name: "restdoc-field", Content: "int $id Identifier"},
				{Name: "restdoc-field", Content: "string $name\nDisplay name"},
			},
		},
		{
			name:      "go line comments",
			text:      "// User is a person.\n// Long text here.\n// @restdoc-label admin",
			wantShort: "User is a person.",
			wantLong:  "Long text here.",
			wantTags:  []Tag{{Name: "restdoc-label", Content: "admin"}},
		},
		{
			name:      "short description ends at blank line",
			text:      "First line\ncontinues here\n\nSecond paragraph.",
			wantShort: "First line continues here",
			wantLong:  "Second paragraph.",
		},
		{
			name:      "email is not a tag",
			text:      "Contact admin@example.com for access.",
			wantShort: "Contact admin@example.com for access.",
		},
		{
			name:      "inline inheritdoc",
			text:      "/** {@inheritdoc} @restdoc-label x */",
			wantTags:  []Tag{{Name: InheritDoc}, {Name: "restdoc-label", Content: "x"}},
			wantShort: "",
		},
		{
			name:     "tags only",
			text:     "@restdoc-ignore",
			wantTags: []Tag{{Name: "restdoc-ignore"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShort, block.Short)
			assert.Equal(t, tt.wantLong, block.Long)
			assert.Equal(t, tt.wantTags, block.Tags)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "/** */", "/***/", "//"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrEmptyComment, "text %q", text)
	}
}

func TestParseNormalizesUnicode(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	block, err := Parse("Cafe\u0301.")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9.", block.Short)
}

func TestBlockTagLookup(t *testing.T) {
	block, err := Parse("@a one @b two @a three")
	require.NoError(t, err)

	assert.Equal(t, []Tag{{Name: "a", Content: "one"}, {Name: "a", Content: "three"}}, block.TagsByName("a"))
	assert.Empty(t, block.TagsByName("c"))
	assert.True(t, block.HasTag("b"))
	assert.False(t, block.HasTag("c"))
}
