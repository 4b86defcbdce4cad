package htmlstream

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Node is one parsed document node: *Element, *Text, *Doctype or
// *Comment. All variants carry the 1-based position of their first
// character in the input.
type Node interface {
	// Position returns the node's 1-based line and column.
	Position() (line, col int)

	// String returns a short human-readable description for debugging.
	String() string
}

// Attribute is a single name/value pair on an element. Value is the
// empty string for boolean attributes.
type Attribute struct {
	Name  string
	Value string
	Line  int
	Col   int
}

func (a *Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		L     int    `json:"l"`
		C     int    `json:"c"`
	}{a.Name, a.Value, a.Line, a.Col})
}

// Element is an element node. In streaming mode ChildStream() exposes
// the element's body as a lazy sequence; a nil child stream means the
// element is self-closing or void and has no body. After
// materialization the body lives in Children instead.
type Element struct {
	TagName    string
	Attributes []*Attribute
	Children   []Node
	Line       int
	Col        int

	stream *NodeStream
}

func (e *Element) Position() (int, int) { return e.Line, e.Col }

// ChildStream returns the element's lazy child stream, or nil if the
// element has no body or has been materialized. The stream must be
// either drained or closed; an abandoned but unclosed stream stalls
// the parse until the ParseResult itself is closed.
func (e *Element) ChildStream() *NodeStream { return e.stream }

func (e *Element) String() string {
	return fmt.Sprintf("<Element %s attrs=%d Line=%d Col=%d>", e.TagName, len(e.Attributes), e.Line, e.Col)
}

func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TagName    string       `json:"tagName"`
		Attributes []*Attribute `json:"attributes,omitempty"`
		Children   []Node       `json:"children,omitempty"`
		L          int          `json:"l"`
		C          int          `json:"c"`
	}{e.TagName, e.Attributes, e.Children, e.Line, e.Col})
}

// Text is a run of character data.
type Text struct {
	TextContent string
	Line        int
	Col         int
}

func (t *Text) Position() (int, int) { return t.Line, t.Col }

func (t *Text) String() string {
	val := t.TextContent
	if len(val) > 40 {
		val = val[:37] + "..."
	}
	return fmt.Sprintf("<Text '%s' Line=%d Col=%d>", val, t.Line, t.Col)
}

func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TextContent string `json:"textContent"`
		L           int    `json:"l"`
		C           int    `json:"c"`
	}{t.TextContent, t.Line, t.Col})
}

// Doctype is a doctype declaration node.
type Doctype struct {
	DoctypeDeclaration string
	Line               int
	Col                int
}

func (d *Doctype) Position() (int, int) { return d.Line, d.Col }

func (d *Doctype) String() string {
	return fmt.Sprintf("<Doctype '%s' Line=%d Col=%d>", d.DoctypeDeclaration, d.Line, d.Col)
}

func (d *Doctype) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DoctypeDeclaration string `json:"doctypeDeclaration"`
		L                  int    `json:"l"`
		C                  int    `json:"c"`
	}{d.DoctypeDeclaration, d.Line, d.Col})
}

// Comment is a comment node, trimmed of surrounding whitespace.
type Comment struct {
	Comment string
	Line    int
	Col     int
}

func (c *Comment) Position() (int, int) { return c.Line, c.Col }

func (c *Comment) String() string {
	return fmt.Sprintf("<Comment '%s' Line=%d Col=%d>", c.Comment, c.Line, c.Col)
}

func (c *Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Comment string `json:"comment"`
		L       int    `json:"l"`
		C       int    `json:"c"`
	}{c.Comment, c.Line, c.Col})
}

// NodeStream is a finite lazy sequence of nodes, iterated in the
// bufio.Scanner style:
//
//	for stream.Next() {
//	    node := stream.Node()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// The builder writes nodes as it parses them; a full buffer suspends
// the producer, so iteration speed controls how far ahead the parse
// runs. Close abandons the stream: the producer discards the remaining
// nodes of this subtree instead of waiting for a reader.
type NodeStream struct {
	ch   chan Node
	node Node

	// err is set by the producer before ch is closed; the channel
	// close is the happens-before edge that publishes it.
	err *Error

	done      chan struct{}
	closeOnce sync.Once
}

func newNodeStream(buffer int) *NodeStream {
	return &NodeStream{
		ch:   make(chan Node, buffer),
		done: make(chan struct{}),
	}
}

// Next advances to the next node. It returns false when the stream is
// exhausted or aborted; check Err afterwards.
func (s *NodeStream) Next() bool {
	n, ok := <-s.ch
	if !ok {
		s.node = nil
		return false
	}
	s.node = n
	return true
}

// Node returns the node read by the last successful Next.
func (s *NodeStream) Node() Node { return s.node }

// Err returns the terminal error, if the stream was aborted. It is
// meaningful once Next has returned false.
func (s *NodeStream) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Close abandons the stream. The producer stops delivering to this
// subtree and moves on; closing twice is a no-op.
func (s *NodeStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// deliver hands a node to the consumer, suspending on backpressure.
// It returns false when the stream has been abandoned or the parse
// cancelled; the caller then discards the rest of this subtree.
func (s *NodeStream) deliver(n Node, stop <-chan struct{}) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- n:
		return true
	case <-s.done:
		return false
	case <-stop:
		return false
	}
}

// closeWith terminates the stream, recording err when the parse was
// aborted. Called exactly once per stream, by the producer.
func (s *NodeStream) closeWith(err *Error) {
	s.err = err
	close(s.ch)
}
