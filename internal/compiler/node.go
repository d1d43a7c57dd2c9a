package compiler

import (
	"encoding/json"
	"sort"
)

// BlockType is the closed set of document block variants. Anything the
// editor emits outside this set renders as BlockUnknown, which passes its
// children through without a wrapping element.
type BlockType int

const (
	BlockUnknown BlockType = iota
	BlockText
	BlockImage
	BlockTable
	BlockRow
	BlockColumn
	BlockSpacer
	BlockDivider
	BlockContainer
)

func blockTypeFromName(name string) BlockType {
	switch name {
	case "TextBlock":
		return BlockText
	case "ImageBlock":
		return BlockImage
	case "TableBlock":
		return BlockTable
	case "RowBlock":
		return BlockRow
	case "ColumnBlock":
		return BlockColumn
	case "SpacerBlock":
		return BlockSpacer
	case "DividerBlock":
		return BlockDivider
	case "Container":
		return BlockContainer
	default:
		return BlockUnknown
	}
}

// node is one arena entry. Children holds arena indices: owned children in
// document order first, then linked-slot children ordered by slot name.
// Child ids absent from the document are dropped during tree construction.
type node struct {
	Type     BlockType
	Props    map[string]any
	Children []int
}

// documentTree is the materialized form of an editor state: the flat
// id-keyed node mapping resolved into an index-addressed arena so rendering
// never hashes ids again.
type documentTree struct {
	nodes []node
	root  int // -1 when the document has no ROOT entry
}

// rawNode mirrors the serialized editor node shape. The type tag is either
// {"resolvedName": "TextBlock"} or a bare string.
type rawNode struct {
	Type        json.RawMessage   `json:"type"`
	Props       map[string]any    `json:"props"`
	Nodes       []string          `json:"nodes"`
	LinkedNodes map[string]string `json:"linkedNodes"`
}

func parseEditorState(raw string) (*documentTree, error) {
	var rawNodes map[string]rawNode
	if err := json.Unmarshal([]byte(raw), &rawNodes); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rawNodes))
	for id := range rawNodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	tree := &documentTree{
		nodes: make([]node, len(ids)),
		root:  -1,
	}
	for i, id := range ids {
		rn := rawNodes[id]
		n := node{
			Type:  resolveBlockType(rn.Type),
			Props: rn.Props,
		}
		for _, childID := range rn.Nodes {
			if child, ok := index[childID]; ok {
				n.Children = append(n.Children, child)
			}
		}
		slots := make([]string, 0, len(rn.LinkedNodes))
		for slot := range rn.LinkedNodes {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			if child, ok := index[rn.LinkedNodes[slot]]; ok {
				n.Children = append(n.Children, child)
			}
		}
		tree.nodes[i] = n
	}

	if root, ok := index["ROOT"]; ok {
		tree.root = root
	}
	return tree, nil
}

func resolveBlockType(raw json.RawMessage) BlockType {
	if len(raw) == 0 {
		return BlockUnknown
	}
	var tagged struct {
		ResolvedName string `json:"resolvedName"`
	}
	if err := json.Unmarshal(raw, &tagged); err == nil && tagged.ResolvedName != "" {
		return blockTypeFromName(tagged.ResolvedName)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return blockTypeFromName(name)
	}
	return BlockUnknown
}
