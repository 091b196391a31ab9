package output

import (
	"path"
	"sort"
	"strings"
)

const (
	// Tree characters
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	// Annotation alignment column
	annotationColumn = 30
)

// StagedEntry describes one staged file for tree rendering.
type StagedEntry struct {
	// Path is the project-relative file path.
	Path string

	// State is the staged file state (created, modified, merged, ...).
	State string

	// Origin is the id of the module that staged the file.
	Origin string
}

type treeNode struct {
	name     string
	state    string
	origin   string
	isDir    bool
	children map[string]*treeNode
}

func newTreeNode(name string, isDir bool) *treeNode {
	return &treeNode{
		name:     name,
		isDir:    isDir,
		children: make(map[string]*treeNode),
	}
}

// RenderStagedTree renders staged files as a tree rooted at the target
// directory name. Leaves carry a state annotation aligned at a fixed column,
// followed by the staging module id.
func RenderStagedTree(rootName string, entries []StagedEntry) string {
	if len(entries) == 0 {
		return ""
	}

	root := newTreeNode(rootName, true)
	for _, e := range entries {
		insertEntry(root, e)
	}

	var sb strings.Builder
	sb.WriteString(GetStyles().Bold.Render(rootName + "/"))
	sb.WriteString("\n")
	renderChildren(&sb, root, "")
	return sb.String()
}

func insertEntry(root *treeNode, e StagedEntry) {
	parts := strings.Split(path.Clean(e.Path), "/")
	current := root

	for i, part := range parts {
		isLeaf := i == len(parts)-1

		child, ok := current.children[part]
		if !ok {
			child = newTreeNode(part, !isLeaf)
			current.children[part] = child
		}
		if isLeaf {
			child.state = e.State
			child.origin = e.Origin
		}
		current = child
	}
}

// sortedChildren returns a node's children, directories first, then
// alphabetically within each group.
func sortedChildren(node *treeNode) []*treeNode {
	children := make([]*treeNode, 0, len(node.children))
	for _, c := range node.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].isDir != children[j].isDir {
			return children[i].isDir
		}
		return children[i].name < children[j].name
	})
	return children
}

func renderChildren(sb *strings.Builder, node *treeNode, prefix string) {
	children := sortedChildren(node)

	for i, child := range children {
		isLast := i == len(children)-1

		connector := treeEdge
		childPrefix := prefix + treeVert
		if isLast {
			connector = treeLast
			childPrefix = prefix + treeSpace
		}

		name := child.name
		if child.isDir {
			name += "/"
		}

		line := prefix + connector + name
		if child.state != "" {
			padding := annotationColumn - len(line)
			if padding < 2 {
				padding = 2
			}
			line += strings.Repeat(" ", padding)
			line += StatusStyle(child.state).Render(child.state)
			if child.origin != "" {
				line += GetStyles().Muted.Render(" " + child.origin)
			}
		}

		sb.WriteString(line)
		sb.WriteString("\n")

		renderChildren(sb, child, childPrefix)
	}
}
