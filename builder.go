package htmlstream

import (
	"errors"
	"strings"
)

// treeBuilder consumes the token stream and produces the hierarchical
// node stream. One parseChildren call runs per nesting level; the
// ancestor tagnames are passed down as an immutable stack, so no node
// ever holds a pointer back to its parent.
type treeBuilder struct {
	tokens   <-chan *token
	stop     <-chan struct{}
	opts     *Options
	filename string
}

func newTreeBuilder(tokens <-chan *token, stop <-chan struct{}, opts *Options, filename string) *treeBuilder {
	return &treeBuilder{
		tokens:   tokens,
		stop:     stop,
		opts:     opts,
		filename: filename,
	}
}

// run parses the whole token stream into root, then closes it. Unclosed
// elements at EOF simply have their streams closed; no synthetic close
// is injected.
func (b *treeBuilder) run(root *NodeStream) {
	_, err := b.parseChildren(root, nil)
	root.closeWith(err)
}

// transformTagName applies the configured casing to opening and closing
// tagnames alike, so casing mismatches are tolerated except in
// preserve mode.
func (b *treeBuilder) transformTagName(name string) string {
	switch b.opts.TagNameCasing {
	case TagNameUpper:
		return strings.ToUpper(name)
	case TagNamePreserve:
		return name
	default:
		return strings.ToLower(name)
	}
}

// deliver writes a node to w. A nil w means this subtree has been
// abandoned by the consumer; the node is discarded but parsing
// continues so the token stream stays in sync.
func (b *treeBuilder) deliver(w *NodeStream, n Node) bool {
	if w == nil {
		return false
	}
	return w.deliver(n, b.stop)
}

// parseChildren handles one nesting level. It returns the transformed
// tagname of the closing tag that terminated an ancestor (possibly this
// level), or "" at end of input.
func (b *treeBuilder) parseChildren(w *NodeStream, stack []string) (string, *Error) {
	for {
		tok, ok := <-b.tokens
		if !ok {
			return "", nil
		}
		switch tok.typ {
		case tokenEOF:
			return "", nil
		case tokenError:
			return "", b.tokenError(tok)
		case tokenTextContent:
			b.deliver(w, &Text{TextContent: tok.val, Line: tok.line, Col: tok.col})
		case tokenDoctypeDeclaration:
			b.deliver(w, &Doctype{DoctypeDeclaration: tok.val, Line: tok.line, Col: tok.col})
		case tokenComment:
			if !b.opts.StripComments {
				b.deliver(w, &Comment{Comment: tok.val, Line: tok.line, Col: tok.col})
			}
		case tokenClosingTagName:
			name := b.transformTagName(tok.val)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == name {
					// A matching ancestor terminates here; unwind
					// until the owning level consumes the name.
					return name, nil
				}
			}
			// Stray closing tag with no open ancestor; ignored.
		case tokenOpeningTagName:
			pending, terminal, err := b.parseElement(w, stack, tok)
			if err != nil {
				return "", err
			}
			if terminal {
				return pending, nil
			}
		default:
			return "", b.protocolError(tok)
		}
	}
}

// parseElement consumes the attribute tokens of one element and, when
// the element has a body, recurses for its children. terminal reports
// that this level must unwind too: pending carries the closing tagname
// still looking for its owner, or "" at end of input.
func (b *treeBuilder) parseElement(w *NodeStream, stack []string, nameTok *token) (pending string, terminal bool, err *Error) {
	el := &Element{
		TagName: b.transformTagName(nameTok.val),
		Line:    nameTok.line,
		Col:     nameTok.col,
	}

	for {
		tok, ok := <-b.tokens
		if !ok {
			return "", true, nil
		}
		switch tok.typ {
		case tokenAttributeName:
			el.Attributes = append(el.Attributes, &Attribute{
				Name: tok.val,
				Line: tok.line,
				Col:  tok.col,
			})
		case tokenAttributeValue:
			if len(el.Attributes) == 0 {
				return "", true, &Error{
					Filename:  b.filename,
					Line:      tok.line,
					Column:    tok.col,
					Sender:    "parser",
					OrigError: errors.New("attribute value without a preceding attribute name"),
				}
			}
			el.Attributes[len(el.Attributes)-1].Value = tok.val
		case tokenSelfClosingTagEnd:
			b.deliver(w, el)
			return "", false, nil
		case tokenOpeningTagEnd:
			var childW *NodeStream
			if w != nil {
				childW = newNodeStream(b.opts.NodeBufferSize)
				el.stream = childW
			}
			if !b.deliver(w, el) && childW != nil {
				// The consumer never saw this element, so nothing can
				// read its stream; parse the body in discard mode.
				childW.closeWith(nil)
				childW = nil
			}
			pending, err := b.parseChildren(childW, append(stack, el.TagName))
			if childW != nil {
				childW.closeWith(err)
			}
			if err != nil {
				return "", true, err
			}
			if pending == el.TagName {
				return "", false, nil
			}
			// Either end of input (pending == "") or a closing tag
			// owned by an ancestor; keep unwinding.
			return pending, true, nil
		case tokenEOF:
			// Opening tag truncated by end of input; the element is
			// emitted without a body.
			b.deliver(w, el)
			return "", true, nil
		case tokenError:
			return "", true, b.tokenError(tok)
		default:
			return "", true, b.protocolError(tok)
		}
	}
}

func (b *treeBuilder) tokenError(tok *token) *Error {
	if tok.err != nil {
		return tok.err
	}
	return &Error{
		Filename:  b.filename,
		Line:      tok.line,
		Column:    tok.col,
		Sender:    "lexer",
		OrigError: errors.New(tok.val),
	}
}

func (b *treeBuilder) protocolError(tok *token) *Error {
	return &Error{
		Filename:  b.filename,
		Line:      tok.line,
		Column:    tok.col,
		Sender:    "parser",
		OrigError: errors.New("unexpected token " + tok.String()),
	}
}
