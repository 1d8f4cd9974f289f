package fancy

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// Tree returns a new tree with the common enumerator styling applied
func Tree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// ComponentTree wraps a styled tree for one configuration component
type ComponentTree struct {
	tree *tree.Tree
}

// NewComponentTree creates a component tree rooted at title
func NewComponentTree(title string) *ComponentTree {
	t := Tree()
	t.Root(title)
	return &ComponentTree{tree: t}
}

// Tree returns the underlying tree
func (c *ComponentTree) Tree() *tree.Tree {
	return c.tree
}

// AddChild adds a child node, either a string or another tree
func (c *ComponentTree) AddChild(child any) *tree.Tree {
	return c.tree.Child(child)
}

// AddField adds a "label: value" leaf
func (c *ComponentTree) AddField(label string, value any) *tree.Tree {
	return c.tree.Child(fmt.Sprintf("%s: %v", label, value))
}

// String renders the tree
func (c *ComponentTree) String() string {
	return c.tree.String()
}

// BranchNode creates a section header node with a count annotation
func BranchNode(title string, count int) *tree.Tree {
	return Tree().Root(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			HeaderStyle.Render(title),
			" ",
			InfoStyle.Render(fmt.Sprintf("(%d)", count)),
		),
	)
}

// TruncateString truncates s to maxLength, marking the cut with an ellipsis
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
