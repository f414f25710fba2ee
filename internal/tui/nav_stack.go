package tui

// NavStack holds the open screens. The top screen is visible and receives
// input; the bottom screen is the home screen and is never popped.
type NavStack struct {
	screens []Screen
}

// NewNavStack creates a stack with root at the bottom
func NewNavStack(root Screen) *NavStack {
	return &NavStack{screens: []Screen{root}}
}

// Len returns the number of screens in the stack
func (ns *NavStack) Len() int {
	return len(ns.screens)
}

// Top returns the visible screen
func (ns *NavStack) Top() Screen {
	return ns.screens[len(ns.screens)-1]
}

// Push adds a screen on top
func (ns *NavStack) Push(s Screen) {
	ns.screens = append(ns.screens, s)
}

// Pop removes and returns the top screen.
// Returns nil if the stack would become empty.
func (ns *NavStack) Pop() Screen {
	if len(ns.screens) <= 1 {
		return nil
	}
	popped := ns.screens[len(ns.screens)-1]
	ns.screens[len(ns.screens)-1] = nil
	ns.screens = ns.screens[:len(ns.screens)-1]
	return popped
}

// PopToRoot removes every screen above the root and returns them, top first
func (ns *NavStack) PopToRoot() []Screen {
	var popped []Screen
	for ns.CanGoBack() {
		popped = append(popped, ns.Pop())
	}
	return popped
}

// ReplaceTop swaps the top screen for s. Screens return updated values from
// Update, so the stack stores whatever they hand back.
func (ns *NavStack) ReplaceTop(s Screen) {
	ns.screens[len(ns.screens)-1] = s
}

// CanGoBack returns true if a screen can be popped
func (ns *NavStack) CanGoBack() bool {
	return len(ns.screens) > 1
}

// Depth returns the navigation depth (0 = home)
func (ns *NavStack) Depth() int {
	return len(ns.screens) - 1
}
