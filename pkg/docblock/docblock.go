// Package docblock splits documentation comments into a short description,
// a long description and an ordered list of @tags.
//
// Both C-style block comments (/** ... */) and Go line comments are accepted,
// as well as text that already had its comment markers removed (for example
// the output of (*ast.CommentGroup).Text).
package docblock

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyComment is returned when a comment holds neither text nor tags.
var ErrEmptyComment = errors.New("empty comment")

// InheritDoc is the tag name recorded for the inline {@inheritdoc} form.
const InheritDoc = "inheritdoc"

var (
	// A tag starts at an '@' placed at the beginning of a line or after
	// whitespace, immediately followed by a letter.
	tagPattern        = regexp.MustCompile(`(?:^|\s)@([A-Za-z][A-Za-z0-9_\-\\:]*)`)
	inlineInheritDocs = regexp.MustCompile(`(?i)\{@inheritdoc\}`)
)

// Tag is a raw tag as it appears in the comment.
type Tag struct {
	Name    string
	Content string
}

// Block is a parsed documentation comment.
type Block struct {
	Short string
	Long  string
	Tags  []Tag
}

// TagsByName returns every tag with exactly the given name, in comment order.
func (b *Block) TagsByName(name string) []Tag {
	var out []Tag
	for _, t := range b.Tags {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// HasTag reports whether at least one tag with the given name is present.
func (b *Block) HasTag(name string) bool {
	for _, t := range b.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Parser parses documentation comments. The zero value is ready to use.
type Parser struct{}

// NewParser allocates a new instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse is a shorthand for NewParser().Parse(text).
func Parse(text string) (*Block, error) {
	return NewParser().Parse(text)
}

// Parse splits text into descriptions and tags.
func (p *Parser) Parse(text string) (*Block, error) {
	body := stripMarkers(norm.NFC.String(text))

	block := &Block{}
	if inlineInheritDocs.MatchString(body) {
		body = inlineInheritDocs.ReplaceAllString(body, "")
		block.Tags = append(block.Tags, Tag{Name: InheritDoc})
	}

	description := body
	matches := tagPattern.FindAllStringSubmatchIndex(body, -1)
	if len(matches) > 0 {
		// m[2] is the start of the name; the '@' sits right before it.
		description = body[:matches[0][2]-1]
	}
	for i, m := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][2] - 1
		}
		block.Tags = append(block.Tags, Tag{
			Name:    body[m[2]:m[3]],
			Content: strings.TrimSpace(body[m[3]:end]),
		})
	}

	block.Short, block.Long = splitDescription(description)
	if block.Short == "" && block.Long == "" && len(block.Tags) == 0 {
		return nil, ErrEmptyComment
	}
	return block, nil
}

// stripMarkers removes comment delimiters and the leading '*' or '//' of every
// line, returning the lines joined by '\n'.
func stripMarkers(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")

	isBlock := strings.HasPrefix(text, "/*")
	if isBlock {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		text = strings.TrimPrefix(text, "*")
	}

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case isBlock && strings.HasPrefix(l, "*"):
			l = strings.TrimPrefix(l, "*")
		case !isBlock && strings.HasPrefix(l, "//"):
			l = strings.TrimPrefix(l, "//")
		}
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// splitDescription returns the short description (leading lines up to a blank
// line or a line ending with a period) and the remaining long description.
func splitDescription(text string) (string, string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var short []string
	rest := len(lines)
	for i, l := range lines {
		if l == "" {
			rest = i + 1
			break
		}
		short = append(short, l)
		if strings.HasSuffix(l, ".") {
			rest = i + 1
			break
		}
	}

	var long string
	if rest < len(lines) {
		long = strings.TrimSpace(strings.Join(lines[rest:], "\n"))
	}
	return strings.Join(short, " "), long
}
