// Package ingest turns uploaded source files into the plain paragraph text
// the chunker understands. Markdown is flattened through its AST; plain text
// passes through unchanged.
package ingest

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Extractor converts markdown content into a title and plain paragraph text.
type Extractor struct {
	parser goldmark.Markdown
}

// NewExtractor creates a markdown extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Extract returns the document title and its content flattened to plain-text
// paragraphs separated by newlines. Only .md/.markdown files are parsed;
// anything else is treated as plain text with the filename as title.
func (e *Extractor) Extract(content []byte, filename string) (title, plain string) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".md" && ext != ".markdown" {
		return titleFromFilename(filename), string(content)
	}

	doc := e.parser.Parser().Parse(text.NewReader(content))
	title = extractTitle(doc, content, filename)
	plain = flattenBlocks(doc, content)
	return title, plain
}

// extractTitle picks the first level-1 heading, else the first level-2
// heading, else the filename.
func extractTitle(doc ast.Node, content []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headingText := inlineText(heading, content)
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

// titleFromFilename strips the extension and capitalizes each word.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		}
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}

// flattenBlocks walks the AST and emits one plain-text paragraph per
// text-bearing block, in document order.
func flattenBlocks(doc ast.Node, content []byte) string {
	var paragraphs []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			paragraphs = append(paragraphs, s)
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			add(inlineText(node, content))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			add(inlineText(node, content))
			return ast.WalkSkipChildren, nil
		case *ast.TextBlock:
			// Tight list items carry their text in a TextBlock.
			add(inlineText(node, content))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			add(blockLines(node, content))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			add(blockLines(node, content))
			return ast.WalkSkipChildren, nil
		default:
			return ast.WalkContinue, nil
		}
	})

	return strings.Join(paragraphs, "\n")
}

// inlineText collects the text content of a node's inline children.
func inlineText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// blockLines joins the raw lines of a code block into one paragraph.
func blockLines(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}
