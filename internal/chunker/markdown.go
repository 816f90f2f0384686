package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// flattenMarkdown strips markdown structure from extractor output, keeping
// the text content only. Extraction APIs return summaries and descriptions
// as markdown; embedding the raw markup wastes tokens and skews similarity.
func flattenMarkdown(input string) string {
	if !strings.ContainsAny(input, "*_#`[") {
		return input
	}
	md := goldmark.New()
	source := []byte(input)
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if txt := extractText(node, source); txt != "" {
			blocks = append(blocks, txt)
		}
	}
	if len(blocks) == 0 {
		return strings.TrimSpace(input)
	}
	return strings.Join(blocks, "\n")
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
