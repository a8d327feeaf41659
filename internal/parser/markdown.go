package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out lines
	writeBlocks(&out, doc, src)
	return out.String(), nil
}

// writeBlocks renders the block children of parent, one blank line between blocks.
func writeBlocks(out *lines, parent ast.Node, src []byte) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			out.add(heading(node.Level, inlineText(node, src)))
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				writeListItem(out, item, src)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blockLines := node.Lines()
			for i := 0; i < blockLines.Len(); i++ {
				seg := blockLines.At(i)
				out.add(string(seg.Value(src)))
			}
		case *ast.Blockquote:
			writeBlocks(out, node, src)
		case *ast.ThematicBreak, *ast.HTMLBlock:
			continue
		default:
			for _, line := range strings.Split(inlineText(node, src), "\n") {
				out.add(line)
			}
		}
		out.blank()
	}
}

// writeListItem flattens an item and its nested lists into "- " lines.
func writeListItem(out *lines, item ast.Node, src []byte) {
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if nested, ok := c.(*ast.List); ok {
			for sub := nested.FirstChild(); sub != nil; sub = sub.NextSibling() {
				writeListItem(out, sub, src)
			}
			continue
		}
		t := strings.Join(strings.Fields(inlineText(c, src)), " ")
		if t != "" {
			out.add("- " + t)
		}
	}
}

// inlineText gets the text content of a node's inline children.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		case *ast.RawHTML:
			continue
		default:
			// Recurse for nested inlines.
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
