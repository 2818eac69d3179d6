package fixtures

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// loadMarkdown extracts fixture actions from the yaml code blocks of a
// markdown file. Front-matter, when present, carries document options;
// headings only organize the file and scope error messages.
func loadMarkdown(data []byte, source string, opts ...Option) (*Document, error) {
	options, content, err := splitFrontMatter(data)
	if err != nil {
		return nil, malformed(source, "invalid front-matter", err)
	}
	for _, opt := range opts {
		opt(&options)
	}

	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	root := md.Parser().Parse(text.NewReader(content))

	doc := &Document{Source: source, Options: options}
	var heading string
	walkErr := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = extractNodeText(node, content)
		case *ast.FencedCodeBlock:
			var info string
			if node.Info != nil {
				info = string(node.Info.Segment.Value(content))
			}
			lang := blockLanguage(info)
			if lang != "yaml" && lang != "yml" {
				return ast.WalkContinue, nil
			}
			blockSource := source
			if heading != "" {
				blockSource = fmt.Sprintf("%s (%s)", source, heading)
			}
			fragment, err := decode(extractCodeBlockContent(&node.BaseBlock, content), blockSource, options)
			if err != nil {
				return ast.WalkStop, err
			}
			if err := doc.merge(fragment, blockSource); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if err := doc.compile(); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitFrontMatter peels a leading `---` delimited YAML block off markdown
// content. A lone leading `---` with no closing fence is left alone; that is
// a YAML document marker, not front-matter.
func splitFrontMatter(data []byte) (DocumentOptions, []byte, error) {
	var options DocumentOptions
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return options, data, nil
	}

	var matter []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		matter = append(matter, line)
	}
	if !closed {
		return options, data, nil
	}

	if err := yaml.Unmarshal([]byte(strings.Join(matter, "\n")), &options); err != nil {
		return options, nil, err
	}

	var content []string
	for scanner.Scan() {
		content = append(content, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return options, nil, err
	}
	return options, []byte(strings.Join(content, "\n")), nil
}

func extractNodeText(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func extractCodeBlockContent(node *ast.BaseBlock, source []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < node.Lines().Len(); i++ {
		line := node.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return bytes.TrimSpace(buf.Bytes())
}

// blockLanguage returns the first token of a fence info string, lowercased.
func blockLanguage(info string) string {
	fields := strings.Fields(strings.TrimSpace(info))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
