// Package docs turns handler doc comments into an operation title and
// description.
package docs

import (
	"go/ast"
	"strings"
)

// Comment holds the documentation extracted from a handler's doc comment.
// An empty field means the value is absent.
type Comment struct {
	Title       string
	Description string
}

// FromCommentGroup extracts documentation from a doc comment. Directive lines
// such as //routedoc:get(...) are not part of the text.
func FromCommentGroup(doc *ast.CommentGroup) Comment {
	if doc == nil {
		return Comment{}
	}
	return Extract(doc.Text())
}

// Extract parses documentation text. If the text starts with a markdown
// heading, the heading is the title and the rest is the description.
// Otherwise everything is description.
func Extract(text string) Comment {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	doc := strings.Join(lines, "\n")
	if doc == "" {
		return Comment{}
	}

	if !strings.HasPrefix(doc, "#") {
		return Comment{Description: mergeParagraphs(doc)}
	}
	first, rest, _ := strings.Cut(doc, "\n")
	return Comment{
		Title:       strings.TrimSpace(strings.TrimLeft(first, "#")),
		Description: mergeParagraphs(rest),
	}
}

// mergeParagraphs joins the lines of each paragraph with spaces and keeps
// blank lines between paragraphs.
func mergeParagraphs(doc string) string {
	var paragraphs []string
	for _, p := range strings.Split(strings.TrimSpace(doc), "\n\n") {
		p = strings.ReplaceAll(strings.TrimSpace(p), "\n", " ")
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
