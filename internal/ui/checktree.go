package ui

// CheckState is the state of a tri-state checkbox
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	PartiallyChecked
)

func (s CheckState) glyph() string {
	switch s {
	case Checked:
		return "☑"
	case PartiallyChecked:
		return "▣"
	}
	return "☐"
}

// CheckItem is one checkbox of a CheckTree
type CheckItem struct {
	Key   string
	Label string

	state    CheckState
	parent   *CheckItem
	children []*CheckItem
}

// State returns the item's check state
func (i *CheckItem) State() CheckState { return i.state }

// Parent returns the parent item, nil for roots
func (i *CheckItem) Parent() *CheckItem { return i.parent }

// Children returns the child items in insertion order
func (i *CheckItem) Children() []*CheckItem {
	out := make([]*CheckItem, len(i.children))
	copy(out, i.children)
	return out
}

// CheckTree keeps the checkbox states of the browser. Setting an item
// cascades to its descendants, and every change of a child re-evaluates
// its ancestors: a parent is Checked or Unchecked when all of its children
// agree and PartiallyChecked otherwise.
type CheckTree struct {
	roots    []*CheckItem
	index    map[string]*CheckItem
	onChange func(*CheckItem)
}

// NewCheckTree creates an empty tree. onChange (may be nil) is called for
// every item whose state changed.
func NewCheckTree(onChange func(*CheckItem)) *CheckTree {
	return &CheckTree{index: make(map[string]*CheckItem), onChange: onChange}
}

// Add attaches a new item under parent (nil for a root) and returns it.
// New items start checked unless the parent is unchecked. Adding an
// existing key returns the existing item.
func (t *CheckTree) Add(parent *CheckItem, key, label string) *CheckItem {
	if existing, ok := t.index[key]; ok {
		return existing
	}

	item := &CheckItem{Key: key, Label: label, state: Checked, parent: parent}
	t.index[key] = item
	if parent == nil {
		t.roots = append(t.roots, item)
		return item
	}
	if parent.state == Unchecked {
		item.state = Unchecked
	}
	parent.children = append(parent.children, item)
	t.refreshAncestors(item)
	return item
}

// Remove detaches item and its descendants
func (t *CheckTree) Remove(item *CheckItem) {
	t.forget(item)

	siblings := &t.roots
	if item.parent != nil {
		siblings = &item.parent.children
	}
	for i, s := range *siblings {
		if s == item {
			*siblings = append((*siblings)[:i], (*siblings)[i+1:]...)
			break
		}
	}
	if item.parent != nil && len(item.parent.children) > 0 {
		t.refreshAncestors(item.parent.children[0])
	}
	item.parent = nil
}

func (t *CheckTree) forget(item *CheckItem) {
	delete(t.index, item.Key)
	for _, c := range item.children {
		t.forget(c)
	}
}

// Find returns the item added under key, or nil
func (t *CheckTree) Find(key string) *CheckItem {
	return t.index[key]
}

// Roots returns the top-level items
func (t *CheckTree) Roots() []*CheckItem {
	out := make([]*CheckItem, len(t.roots))
	copy(out, t.roots)
	return out
}

// Toggle checks an item that is not fully checked and unchecks a checked one
func (t *CheckTree) Toggle(item *CheckItem) {
	if item.state == Checked {
		t.SetState(item, Unchecked)
		return
	}
	t.SetState(item, Checked)
}

// SetState sets item to state, cascades Checked or Unchecked to every
// descendant and re-evaluates the ancestors.
func (t *CheckTree) SetState(item *CheckItem, state CheckState) {
	t.set(item, state)
	if state != PartiallyChecked {
		t.cascade(item, state)
	}
	t.refreshAncestors(item)
}

func (t *CheckTree) cascade(item *CheckItem, state CheckState) {
	for _, c := range item.children {
		t.set(c, state)
		t.cascade(c, state)
	}
}

// refreshAncestors is the child-changed handler, walked up to the root
func (t *CheckTree) refreshAncestors(item *CheckItem) {
	for p := item.parent; p != nil; p = p.parent {
		if mixed(p) {
			if p.state == PartiallyChecked {
				return
			}
			t.set(p, PartiallyChecked)
			continue
		}
		if p.state == PartiallyChecked {
			if !t.Reconcile(p) {
				return
			}
			continue
		}
		if len(p.children) > 0 && p.state != p.children[0].state {
			t.set(p, p.children[0].state)
			continue
		}
		return
	}
}

// Reconcile promotes a PartiallyChecked item whose children are all in
// the same full state to that state. It reports whether item changed;
// an item with mixed children stays partially checked.
func (t *CheckTree) Reconcile(item *CheckItem) bool {
	if item.state != PartiallyChecked || len(item.children) == 0 || mixed(item) {
		return false
	}
	state := item.children[0].state
	if state == PartiallyChecked {
		return false
	}
	t.set(item, state)
	return true
}

func mixed(item *CheckItem) bool {
	if len(item.children) == 0 {
		return false
	}
	first := item.children[0].state
	for _, c := range item.children {
		if c.state != first || c.state == PartiallyChecked {
			return true
		}
	}
	return false
}

func (t *CheckTree) set(item *CheckItem, state CheckState) {
	if item.state == state {
		return
	}
	item.state = state
	if t.onChange != nil {
		t.onChange(item)
	}
}

// CheckedLeaves returns every checked item without children, in tree order
func (t *CheckTree) CheckedLeaves(root *CheckItem) []*CheckItem {
	var out []*CheckItem
	var walk func(*CheckItem)
	walk = func(i *CheckItem) {
		if len(i.children) == 0 {
			if i.state == Checked {
				out = append(out, i)
			}
			return
		}
		for _, c := range i.children {
			walk(c)
		}
	}
	walk(root)
	return out
}
