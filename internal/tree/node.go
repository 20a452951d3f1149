// Package tree models the tests of one executable as a tree of nodes:
// an *Executable root, *Suite groups and *Test leaves. Run requests bubble
// up from leaves to the root, which invokes the executable; the resulting
// ResultSet is handed back down, each suite passing its pending children
// the slice of results keyed by their name.
//
// All methods must be called from the control thread the Executable posts
// its completions to (see package eventloop).
package tree

import (
	"strings"

	"gtr/internal/domain"
)

// Node is one of *Test, *Suite or *Executable
type Node interface {
	Name() string
	Parent() Node
	Result() *domain.ResultSet
	// Run asks for this node and everything below it to be run.
	Run()
	// ReceiveTestResults replaces the node's result and forwards the
	// relevant slices to pending children.
	ReceiveTestResults(rs *domain.ResultSet)

	setParent(p container)
	clearPending()
}

// container is a node that can parent others and accept their run requests
type container interface {
	Node
	receiveRunRequest(child Node, req runRequest)
}

// runRequest travels from a leaf towards the root. Each suite it passes
// through qualifies it with its own name.
type runRequest struct {
	origin    *Test
	testName  string
	suiteName string
}

func (r runRequest) qualified() string {
	return domain.QualifiedName(r.suiteName, r.testName)
}

type header struct {
	name   string
	parent container
	result *domain.ResultSet
}

// Name returns the node's name, unique among its siblings
func (h *header) Name() string { return h.name }

// Parent returns the parent node, nil for a root or a detached node
func (h *header) Parent() Node {
	if h.parent == nil {
		return nil
	}
	return h.parent
}

// Result returns the last results delivered to the node, or nil
func (h *header) Result() *domain.ResultSet { return h.result }

func (h *header) setParent(p container) { h.parent = p }

// Root returns the executable n belongs to, or nil if it is detached
func Root(n Node) *Executable {
	for n != nil {
		if e, ok := n.(*Executable); ok {
			return e
		}
		n = n.Parent()
	}
	return nil
}

// FullName returns the gtest address of n ("Suite.Test"), built from the
// names between the executable and n
func FullName(n Node) string {
	var parts []string
	for n != nil {
		if _, ok := n.(*Executable); ok {
			break
		}
		parts = append(parts, n.Name())
		n = n.Parent()
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func notifyResults(n Node) {
	if e := Root(n); e != nil && e.observer != nil {
		e.observer.ResultsReady(n)
	}
}

// Observer receives the completion events of an executable tree.
// Every event is delivered after the state change it reports.
type Observer interface {
	ResultsReady(n Node)
	ListingReady(e *Executable, err error)
	RunFinished(e *Executable, exitCode int, err error)
}

// Hooks adapts plain functions to Observer. Nil fields are skipped.
type Hooks struct {
	OnResults func(n Node)
	OnListing func(e *Executable, err error)
	OnRun     func(e *Executable, exitCode int, err error)
}

func (h Hooks) ResultsReady(n Node) {
	if h.OnResults != nil {
		h.OnResults(n)
	}
}

func (h Hooks) ListingReady(e *Executable, err error) {
	if h.OnListing != nil {
		h.OnListing(e, err)
	}
}

func (h Hooks) RunFinished(e *Executable, exitCode int, err error) {
	if h.OnRun != nil {
		h.OnRun(e, exitCode, err)
	}
}
