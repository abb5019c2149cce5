package service

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// slugStripper drops punctuation and symbol runes before a title is
// collapsed into a slug.
var slugStripper = regexp.MustCompile(`[\p{P}\p{S}]`)

// Slugify turns a title into a lowercase hyphen-joined slug.
func Slugify(title string) string {
	cleaned := slugStripper.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(strings.ToLower(cleaned)), "-")
}

// MarkdownRenderer converts user-submitted markdown into the HTML that
// is persisted alongside the raw source.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
				extension.Footnote,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAttribute(),
			),
		),
	}
}

func (r *MarkdownRenderer) Render(raw string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
