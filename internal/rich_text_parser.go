package internal

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractTextFromRichText walks a richText document and extracts plain text.
// Lexical editors nest everything under root.children; bare nodes and node
// arrays are accepted as well.
func ExtractTextFromRichText(richTextJSON string) (string, error) {
	if richTextJSON == "" {
		return "", nil
	}
	if !gjson.Valid(richTextJSON) {
		return "", fmt.Errorf("richText is not valid JSON")
	}

	doc := gjson.Parse(richTextJSON)
	if root := doc.Get("root"); root.IsObject() {
		doc = root
	}

	var text string
	switch {
	case doc.IsArray():
		var b strings.Builder
		doc.ForEach(func(_, node gjson.Result) bool {
			b.WriteString(richTextNodeText(node))
			return true
		})
		text = b.String()
	case doc.IsObject():
		text = richTextNodeText(doc)
	default:
		text = doc.String()
	}

	return strings.TrimSpace(text), nil
}

// richTextNodeText extracts the text of one node. Code and reasoning nodes
// consume their children; every other node type recurses into them.
func richTextNodeText(node gjson.Result) string {
	nodeType := node.Get("type").String()

	switch nodeType {
	case "text":
		return node.Get("text").String()

	case "code":
		if code := richTextChildrenText(node); code != "" {
			return "\n```\n" + code + "\n```\n"
		}
		return ""

	case "thinking", "tool", "tool_call", "function_call":
		if inner := richTextChildrenText(node); inner != "" {
			return fmt.Sprintf("\n[%s]\n%s\n", nodeType, inner)
		}
		return ""

	case "redacted_reasoning", "redacted-reasoning":
		// Providers ship these opaque; surface the payload in a fence so the
		// reader at least sees that reasoning happened here
		inner := richTextChildrenText(node)
		if inner == "" {
			inner = firstStringField(node, "content", "data", "value")
		}
		if inner != "" {
			return fmt.Sprintf("\n```\n[Redacted Reasoning]\n%s\n```\n", inner)
		}
		return ""

	default:
		var parts []string
		if t := node.Get("text").String(); t != "" {
			parts = append(parts, t)
		}
		if v := firstStringField(node, "content", "value"); v != "" {
			parts = append(parts, v)
		}
		if children := richTextChildrenText(node); children != "" {
			parts = append(parts, children)
		}
		return strings.Join(parts, "\n")
	}
}

// richTextChildrenText concatenates the extracted text of a node's children
func richTextChildrenText(node gjson.Result) string {
	var b strings.Builder
	node.Get("children").ForEach(func(_, child gjson.Result) bool {
		b.WriteString(richTextNodeText(child))
		return true
	})
	return b.String()
}

// firstStringField returns the first named field that holds a non-empty string
func firstStringField(node gjson.Result, fields ...string) string {
	for _, field := range fields {
		if v := node.Get(field); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
