package htmlstream

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrConsumed is returned when a ParseResult is consumed a second time.
// Both Stream and ToArray take the single consumption slot.
var ErrConsumed = &Error{
	Sender:    "result",
	OrigError: errors.New("parse result already consumed"),
}

// ParseResult is a single-use handle over the root node stream of one
// parse. Consume it either by streaming (Stream) or by materializing
// the whole tree (ToArray); a second consumption attempt fails with
// ErrConsumed.
type ParseResult struct {
	filename string
	root     *NodeStream

	consumed atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

func newParseResult(filename string, root *NodeStream, stop chan struct{}) *ParseResult {
	return &ParseResult{
		filename: filename,
		root:     root,
		stop:     stop,
	}
}

// Stream returns the root node stream for iteration. Element nodes on
// it expose child streams to iterate recursively.
func (r *ParseResult) Stream() (*NodeStream, error) {
	if !r.consumed.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}
	return r.root, nil
}

// ToArray drains the whole tree, recursively resolving each element's
// child stream into its Children slice, and returns the fully-baked
// top-level nodes.
func (r *ParseResult) ToArray() ([]Node, error) {
	stream, err := r.Stream()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return materialize(stream)
}

// Close cancels the parse. Producers blocked on delivery unwind, the
// input source is released, and any open streams are drained or
// abandoned. Closing twice is a no-op; Close after a completed
// iteration is harmless.
func (r *ParseResult) Close() error {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	return nil
}

// materialize drains s recursively, depth-first. Elements with an
// empty body keep a nil Children slice, so the distinction between
// "no body" and "empty body" disappears in materialized form.
func materialize(s *NodeStream) ([]Node, error) {
	var nodes []Node
	for s.Next() {
		n := s.Node()
		if el, ok := n.(*Element); ok && el.stream != nil {
			children, err := materialize(el.stream)
			if err != nil {
				return nil, err
			}
			el.Children = children
			el.stream = nil
		}
		nodes = append(nodes, n)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}
