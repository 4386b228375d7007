// Package ingest loads uploaded documents, splits them into
// overlapping chunks and writes them to the vector store.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LoadText reads a document and returns its plain-text content.
// Markdown files are parsed and flattened so that formatting syntax
// does not pollute the embedded text.
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdownToText(data)
	default:
		return string(data), nil
	}
}

// markdownToText walks the markdown AST and collects text content,
// separating block-level nodes with blank lines.
func markdownToText(source []byte) (string, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading:
				if b.Len() > 0 {
					b.WriteString("\n\n")
				}
			case *ast.TextBlock:
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.CodeBlock:
			writeLines(&b, node, source)
		case *ast.FencedCodeBlock:
			writeLines(&b, node, source)
		case *ast.AutoLink:
			b.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing markdown: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

func writeLines(b *strings.Builder, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	b.WriteString("\n\n")
}
