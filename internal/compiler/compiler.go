// Package compiler turns stored document templates into self-contained HTML.
//
// A template is either "rich" (an editorState field holding a serialized
// id-keyed block tree produced by the visual editor) or "simple" (a content
// field holding text with {{ }} bindings). Compilation is pure and total: it
// performs no I/O, never fails, and yields byte-identical output for
// identical inputs, so a single Compiler is safe for concurrent use.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mkorchagin/docforge/internal/datapath"
)

// maxRenderDepth bounds tree recursion. Editor documents are shallow; the
// bound exists so a malformed document with a child-reference cycle
// truncates instead of recursing forever.
const maxRenderDepth = 64

const invalidTemplatePlaceholder = "<p>Invalid template data</p>"

type Compiler struct{}

func New() *Compiler {
	return &Compiler{}
}

// Compile renders a template document against a data context and wraps the
// result in the document shell. The only observable failure mode is the
// fixed placeholder fragment for an unparsable rich document.
func (c *Compiler) Compile(template map[string]any, data map[string]any) string {
	var body string
	if editorState, ok := template["editorState"].(string); ok && editorState != "" {
		tree, err := parseEditorState(editorState)
		if err != nil {
			body = invalidTemplatePlaceholder
		} else {
			body = renderTree(tree, data)
		}
	} else {
		if content, ok := template["content"].(string); ok {
			body = ResolveBindings(content, data)
		}
	}

	// pageSettings is accepted for forward compatibility; it does not yet
	// affect rendering.
	pageSettings, _ := template["pageSettings"].(map[string]any)
	return wrapDocument(body, pageSettings)
}

func renderTree(tree *documentTree, data map[string]any) string {
	if tree.root < 0 {
		return ""
	}
	return renderNode(tree, tree.root, data, 0)
}

func renderNode(tree *documentTree, idx int, data map[string]any, depth int) string {
	if depth >= maxRenderDepth {
		return ""
	}
	n := &tree.nodes[idx]

	var children strings.Builder
	for _, child := range n.Children {
		children.WriteString(renderNode(tree, child, data, depth+1))
	}
	childrenHTML := children.String()

	switch n.Type {
	case BlockText:
		return renderTextBlock(n.Props, data)
	case BlockImage:
		return renderImageBlock(n.Props)
	case BlockTable:
		return renderTableBlock(n.Props, data)
	case BlockRow:
		return renderRowBlock(n.Props, childrenHTML)
	case BlockColumn:
		return renderColumnBlock(n.Props, childrenHTML)
	case BlockSpacer:
		return renderSpacerBlock(n.Props)
	case BlockDivider:
		return renderDividerBlock(n.Props)
	case BlockContainer:
		return "<div>" + childrenHTML + "</div>"
	default:
		return childrenHTML
	}
}

// propString returns the node prop in its string form, or fallback when the
// prop is absent. A present-but-empty value is kept as-is.
func propString(props map[string]any, key, fallback string) string {
	value, ok := props[key]
	if !ok {
		return fallback
	}
	return stringify(value)
}

func renderTextBlock(props map[string]any, data map[string]any) string {
	text := ResolveBindings(propString(props, "text", ""), data)
	style := fmt.Sprintf(
		"font-size: %spx; font-family: %s; text-align: %s; color: %s; line-height: %s;",
		propString(props, "fontSize", "16"),
		propString(props, "fontFamily", "sans-serif"),
		propString(props, "textAlign", "left"),
		propString(props, "color", "#000000"),
		propString(props, "lineHeight", "1.5"),
	)
	return fmt.Sprintf(`<div style="%s">%s</div>`, style, text)
}

func renderImageBlock(props map[string]any) string {
	src := propString(props, "src", "")
	width := propString(props, "width", "100%")
	height := propString(props, "height", "200px")

	if src == "" {
		return fmt.Sprintf(
			`<div style="width: %s; height: %s; background: #f0f0f0; display: flex; align-items: center; justify-content: center; color: #999;">No image</div>`,
			width, height,
		)
	}

	style := fmt.Sprintf(
		"width: %s; height: %s; object-fit: %s; border-radius: %spx;",
		width, height,
		propString(props, "fit", "contain"),
		propString(props, "borderRadius", "0"),
	)
	return fmt.Sprintf(`<img src="%s" alt="%s" style="%s" />`,
		src, propString(props, "alt", "Image"), style)
}

func renderTableBlock(props map[string]any, data map[string]any) string {
	columns, _ := props["columns"].([]any)
	dataPath := propString(props, "dataPath", "")
	headerBg := propString(props, "headerBg", "#f5f5f5")
	headerColor := propString(props, "headerColor", "#000000")
	borderColor := propString(props, "borderColor", "#e0e0e0")

	rows, _ := datapath.Get(data, dataPath).([]any)

	var table strings.Builder
	fmt.Fprintf(&table,
		`<table style="width: 100%%; border-collapse: collapse; border: 1px solid %s;">`,
		borderColor)

	table.WriteString("<thead><tr>")
	for _, raw := range columns {
		col, _ := raw.(map[string]any)
		fmt.Fprintf(&table,
			`<th style="background: %s; color: %s; padding: 8px 12px; border-bottom: 1px solid %s; text-align: %s; width: %s;">%s</th>`,
			headerBg, headerColor, borderColor,
			propString(col, "align", "left"),
			propString(col, "width", "auto"),
			propString(col, "header", ""),
		)
	}
	table.WriteString("</tr></thead>")

	table.WriteString("<tbody>")
	for _, rawRow := range rows {
		row, _ := rawRow.(map[string]any)
		table.WriteString("<tr>")
		for _, raw := range columns {
			col, _ := raw.(map[string]any)
			value, present := row[propString(col, "key", "")]
			if !present {
				value = ""
			}
			value = formatCell(value, col)
			fmt.Fprintf(&table,
				`<td style="padding: 8px 12px; border-bottom: 1px solid %s; text-align: %s;">%s</td>`,
				borderColor,
				propString(col, "align", "left"),
				stringify(value),
			)
		}
		table.WriteString("</tr>")
	}
	table.WriteString("</tbody></table>")

	return table.String()
}

func formatCell(value any, col map[string]any) any {
	format, _ := col["format"].(map[string]any)
	switch propString(format, "type", "") {
	case "currency":
		return FormatCurrency(value)
	case "number":
		decimals := 2
		if d, ok := toFloat(format["decimals"]); ok {
			decimals = int(d)
		}
		return FormatNumber(value, decimals)
	default:
		return value
	}
}

var justifyMap = map[string]string{
	"start":   "flex-start",
	"center":  "center",
	"end":     "flex-end",
	"between": "space-between",
	"around":  "space-around",
}

func renderRowBlock(props map[string]any, children string) string {
	justify, ok := justifyMap[propString(props, "justify", "start")]
	if !ok {
		justify = "flex-start"
	}
	style := fmt.Sprintf(
		"display: flex; flex-direction: row; gap: %spx; align-items: %s; justify-content: %s;",
		propString(props, "gap", "16"),
		propString(props, "alignment", "stretch"),
		justify,
	)
	return fmt.Sprintf(`<div style="%s">%s</div>`, style, children)
}

func renderColumnBlock(props map[string]any, children string) string {
	style := fmt.Sprintf(
		"width: %s; padding: %spx; background: %s;",
		propString(props, "width", "50%"),
		propString(props, "padding", "8"),
		propString(props, "background", "transparent"),
	)
	return fmt.Sprintf(`<div style="%s">%s</div>`, style, children)
}

func renderSpacerBlock(props map[string]any) string {
	return fmt.Sprintf(`<div style="height: %spx;"></div>`, propString(props, "height", "40"))
}

func renderDividerBlock(props map[string]any) string {
	return fmt.Sprintf(
		`<hr style="border: none; border-top: %spx %s %s; margin: %spx 0;" />`,
		propString(props, "thickness", "1"),
		propString(props, "style", "solid"),
		propString(props, "color", "#e0e0e0"),
		propString(props, "margin", "16"),
	)
}

const documentShellHead = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        * {
            box-sizing: border-box;
            margin: 0;
            padding: 0;
        }
        body {
            font-family: 'Inter', -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            font-size: 14px;
            line-height: 1.5;
            color: #1a1a1a;
        }
        table {
            border-collapse: collapse;
        }
        img {
            max-width: 100%;
        }
    </style>
</head>
<body>
    `

const documentShellFoot = `
</body>
</html>
`

func wrapDocument(body string, _ map[string]any) string {
	return documentShellHead + body + documentShellFoot
}
