package drive

import "strings"

// Navigator holds the stack of visited folders, root first and the current
// folder last. The stack is never empty.
type Navigator struct {
	stack []FolderStackEntry
}

// NewNavigator returns a navigator positioned at the drive root.
func NewNavigator() *Navigator {
	return &Navigator{stack: []FolderStackEntry{{Name: RootName}}}
}

// Current returns the folder being viewed.
func (n *Navigator) Current() FolderStackEntry {
	return n.stack[len(n.stack)-1]
}

// Enter pushes a folder onto the stack.
func (n *Navigator) Enter(e FolderStackEntry) {
	n.stack = append(n.stack, e)
}

// Back pops the current folder. It is a no-op at the root and reports
// whether the stack changed.
func (n *Navigator) Back() bool {
	if len(n.stack) == 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// Depth returns the stack length.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Stack returns a copy of the stack.
func (n *Navigator) Stack() []FolderStackEntry {
	out := make([]FolderStackEntry, len(n.stack))
	copy(out, n.stack)
	return out
}

// Path renders the stack as a breadcrumb, e.g. "My Drive / Reports / 2024".
func (n *Navigator) Path() string {
	names := make([]string, len(n.stack))
	for i, e := range n.stack {
		names[i] = e.Name
	}
	return strings.Join(names, " / ")
}

// Reset drops everything but the root.
func (n *Navigator) Reset() {
	n.stack = n.stack[:1]
}
