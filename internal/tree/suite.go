package tree

import "gtr/internal/domain"

// Suite groups child nodes. It records which children asked to run and,
// when results arrive, hands each of them its slice of the ResultSet.
type Suite struct {
	header
	self       container
	children   []Node
	index      map[string]Node
	pending    []Node
	pendingSet map[Node]struct{}
}

// NewSuite creates a detached suite. Use Suite.AddSuite to attach one.
func NewSuite(name string) *Suite {
	s := &Suite{}
	s.init(name, s)
	return s
}

func (s *Suite) init(name string, self container) {
	s.name = name
	s.self = self
	s.index = make(map[string]Node)
	s.pendingSet = make(map[Node]struct{})
}

// AddSuite returns the child suite called name, creating it if needed
func (s *Suite) AddSuite(name string) *Suite {
	if existing, ok := s.index[name].(*Suite); ok {
		return existing
	}
	child := NewSuite(name)
	s.attach(child)
	return child
}

// AddTest returns the child test called name, creating it if needed
func (s *Suite) AddTest(name string) *Test {
	if existing, ok := s.index[name].(*Test); ok {
		return existing
	}
	child := NewTest(name)
	s.attach(child)
	return child
}

func (s *Suite) attach(child Node) {
	if old, ok := s.index[child.Name()]; ok {
		s.Remove(old.Name())
	}
	child.setParent(s.self)
	s.children = append(s.children, child)
	s.index[child.Name()] = child
}

// Remove detaches the child called name, dropping it from the pending list
func (s *Suite) Remove(name string) bool {
	child, ok := s.index[name]
	if !ok {
		return false
	}
	delete(s.index, name)
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			break
		}
	}
	s.dropPending(child)
	child.setParent(nil)
	return true
}

// Clear detaches every child
func (s *Suite) Clear() {
	for _, c := range s.children {
		c.setParent(nil)
	}
	s.children = nil
	s.index = make(map[string]Node)
	s.pending = nil
	s.pendingSet = make(map[Node]struct{})
}

// Children returns the children in insertion order
func (s *Suite) Children() []Node {
	out := make([]Node, len(s.children))
	copy(out, s.children)
	return out
}

// Child returns the child called name, or nil
func (s *Suite) Child(name string) Node {
	return s.index[name]
}

// ChildNames returns the names of the children in insertion order
func (s *Suite) ChildNames() []string {
	names := make([]string, len(s.children))
	for i, c := range s.children {
		names[i] = c.Name()
	}
	return names
}

// Pending returns the children waiting for a run result
func (s *Suite) Pending() []Node {
	out := make([]Node, len(s.pending))
	copy(out, s.pending)
	return out
}

// Run clears the pending list, marks every child pending and runs each of them
func (s *Suite) Run() {
	s.pending = nil
	s.pendingSet = make(map[Node]struct{})
	children := s.Children()
	for _, c := range children {
		s.addPending(c)
	}
	for _, c := range children {
		c.Run()
	}
}

// receiveRunRequest records the child as pending and forwards the request
// upward, qualified with this suite's name
func (s *Suite) receiveRunRequest(child Node, req runRequest) {
	s.addPending(child)
	if s.parent == nil {
		return
	}
	if req.suiteName == "" {
		req.suiteName = s.name
	} else {
		req.suiteName = s.name + "." + req.suiteName
	}
	s.parent.receiveRunRequest(s.self, req)
}

// ReceiveTestResults delivers to every pending child the entry of rs keyed by
// its name, then clears the pending list, stores rs and raises "results ready".
// Pending children missing from rs receive nothing this round.
func (s *Suite) ReceiveTestResults(rs *domain.ResultSet) {
	pending := s.pending
	s.pending = nil
	s.pendingSet = make(map[Node]struct{})

	for _, child := range pending {
		if childRS := rs.Lookup(child.Name()); childRS != nil {
			child.ReceiveTestResults(childRS)
		}
	}

	s.result = rs
	notifyResults(s.self)
}

func (s *Suite) addPending(child Node) {
	if _, ok := s.pendingSet[child]; ok {
		return
	}
	s.pendingSet[child] = struct{}{}
	s.pending = append(s.pending, child)
}

func (s *Suite) dropPending(child Node) {
	if _, ok := s.pendingSet[child]; !ok {
		return
	}
	delete(s.pendingSet, child)
	for i, c := range s.pending {
		if c == child {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
}

func (s *Suite) clearPending() {
	s.pending = nil
	s.pendingSet = make(map[Node]struct{})
	for _, c := range s.children {
		c.clearPending()
	}
}

// Walk calls fn for every descendant, depth first, in insertion order
func (s *Suite) Walk(fn func(n Node)) {
	for _, c := range s.children {
		fn(c)
		if sub, ok := c.(interface{ Walk(func(Node)) }); ok {
			sub.Walk(fn)
		}
	}
}
