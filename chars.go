package htmlstream

// Character classification used by the lexer. All predicates operate on
// decoded codepoints; the lexer's own comparisons stay in the ASCII range,
// so only tagnames ever reach beyond it (via the PCEN ranges).

// isLetter reports whether r is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isWhitespace reports whether r is an HTML whitespace character
// (U+0009..U+000D or U+0020).
func isWhitespace(r rune) bool {
	return (r >= 0x09 && r <= 0x0D) || r == 0x20
}

// isLineBreak reports whether r counts as a line break for position
// tracking. U+000A..U+000D are treated uniformly, so a CRLF pair advances
// the line counter twice.
func isLineBreak(r rune) bool {
	return r >= 0x0A && r <= 0x0D
}

// isLegalLeadingTagNameChar reports whether r may start a tagname.
func isLegalLeadingTagNameChar(r rune) bool {
	return isLetter(r) || r == '_'
}

// pcenRanges holds the inclusive codepoint ranges beyond ASCII that HTML
// permits in custom element names ("potentially custom element name").
var pcenRanges = [...][2]rune{
	{0xC0, 0xD6},
	{0xD8, 0xF6},
	{0xF8, 0x37D},
	{0x37F, 0x1FFF},
	{0x200C, 0x200D},
	{0x203F, 0x2040},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

func isPCENChar(r rune) bool {
	for _, rng := range pcenRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// isLegalTagNameChar reports whether r may appear in a tagname after the
// leading character.
func isLegalTagNameChar(r rune) bool {
	if isLetter(r) {
		return true
	}
	switch {
	case r >= '1' && r <= '9':
		return true
	case r == '-' || r == '.' || r == ':' || r == '_':
		return true
	}
	return isPCENChar(r)
}

// isLegalAttributeNameChar reports whether r may appear in an attribute
// name. The set is defined by exclusion.
func isLegalAttributeNameChar(r rune) bool {
	if isWhitespace(r) || r == eofRune {
		return false
	}
	switch r {
	case '=', '>', '/', '\'', '"':
		return false
	}
	return true
}

// isLegalUnquotedAttributeValueChar reports whether r may appear in an
// unquoted attribute value.
func isLegalUnquotedAttributeValueChar(r rune) bool {
	if isWhitespace(r) || r == eofRune {
		return false
	}
	switch r {
	case '<', '>', '\'', '"':
		return false
	}
	return true
}

// isAttributeValueQuote reports whether r opens a quoted attribute value.
func isAttributeValueQuote(r rune) bool {
	return r == '\'' || r == '"'
}

// isScriptQuote reports whether r opens a string inside script content.
func isScriptQuote(r rune) bool {
	return r == '\'' || r == '"' || r == '`'
}

// isStyleQuote reports whether r opens a string inside style content.
func isStyleQuote(r rune) bool {
	return r == '\'' || r == '"'
}

// voidElements are elements without a body; their opening tag always
// closes the element, with or without self-closing syntax.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {},
	"hr": {}, "img": {}, "input": {}, "link": {}, "meta": {},
	"param": {}, "source": {}, "track": {}, "wbr": {},
}

// rawTextElements are elements whose body is not parsed as HTML until the
// matching closing tag.
var rawTextElements = map[string]struct{}{
	"script": {}, "style": {}, "textarea": {}, "title": {},
}

// isVoidElement and isRawTextElement classify case-insensitively; the
// configured casing transform is applied later, by the tree builder.
func isVoidElement(name string) bool {
	_, ok := voidElements[asciiLower(name)]
	return ok
}

func isRawTextElement(name string) bool {
	_, ok := rawTextElements[asciiLower(name)]
	return ok
}

// asciiLower lowercases ASCII letters only, leaving PCEN codepoints alone.
func asciiLower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
