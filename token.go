package htmlstream

import "fmt"

// tokenType represents the classification of a lexer token.
type tokenType int

const (
	// tokenError indicates a lexical error was encountered. The token
	// carries the *Error describing what went wrong; the token stream
	// closes after it.
	tokenError tokenType = iota

	// tokenEOF is the terminal token; exactly one is emitted per input.
	tokenEOF

	// tokenTextContent is a non-empty run of character data. It may
	// contain embedded newlines.
	tokenTextContent

	// tokenOpeningTagName is the tagname of an opening tag, without the
	// leading '<'.
	tokenOpeningTagName

	// tokenAttributeName appears zero or more times per opening tag.
	tokenAttributeName

	// tokenAttributeValue appears at most once, immediately following
	// the tokenAttributeName it belongs to.
	tokenAttributeValue

	// tokenOpeningTagEnd closes an opening tag with '>'; the element
	// has a body.
	tokenOpeningTagEnd

	// tokenSelfClosingTagEnd closes an opening tag that has no body,
	// either via '/>' or because the tagname is a void element.
	tokenSelfClosingTagEnd

	// tokenClosingTagName is the tagname inside '</tag>'.
	tokenClosingTagName

	// tokenComment is the content between '<!--' and '-->', trimmed of
	// surrounding whitespace.
	tokenComment

	// tokenDoctypeDeclaration is the identifier following '<!DOCTYPE',
	// trimmed of surrounding whitespace.
	tokenDoctypeDeclaration
)

// token is a single lexical element produced by the lexer. Line and Col
// are 1-based and point at the first character the token covers.
type token struct {
	typ  tokenType
	val  string
	line int
	col  int

	// err is set for tokenError only.
	err *Error
}

// String returns a human-readable representation of the token for
// debugging. Long values are truncated.
func (t *token) String() string {
	val := t.val
	if len(val) > 1000 {
		val = fmt.Sprintf("%s...%s", val[:10], val[len(val)-5:])
	}

	typ := ""
	switch t.typ {
	case tokenError:
		typ = "Error"
	case tokenEOF:
		typ = "EOF"
	case tokenTextContent:
		typ = "TextContent"
	case tokenOpeningTagName:
		typ = "OpeningTagName"
	case tokenAttributeName:
		typ = "AttributeName"
	case tokenAttributeValue:
		typ = "AttributeValue"
	case tokenOpeningTagEnd:
		typ = "OpeningTagEnd"
	case tokenSelfClosingTagEnd:
		typ = "SelfClosingTagEnd"
	case tokenClosingTagName:
		typ = "ClosingTagName"
	case tokenComment:
		typ = "Comment"
	case tokenDoctypeDeclaration:
		typ = "DoctypeDeclaration"
	default:
		typ = "Unknown"
	}

	return fmt.Sprintf("<Token Typ=%s (%d) Val='%s' Line=%d Col=%d>",
		typ, t.typ, val, t.line, t.col)
}
