package htmlstream

import "strings"

// lexerStateFn represents a state function in the lexer's state machine.
// Each state function consumes characters from the decoder, writes zero
// or more tokens to the output channel and returns the next state to
// enter, or nil to terminate lexing.
type lexerStateFn func() lexerStateFn

// lexer implements a state-machine based tokenizer for HTML input. It
// pulls decoded codepoints one at a time, identifies markup constructs
// and emits tokens for the tree builder to consume. Token sends block
// once the channel buffer is full, so a slow consumer throttles the
// lexer all the way down to the byte source.
type lexer struct {
	dec lexerInput
	src byteSource

	tokens chan<- *token
	stop   <-chan struct{}

	opts     *Options
	filename string

	// text accumulates character data until the next markup construct;
	// textLine/textCol are the position of its first character.
	text     strings.Builder
	textLine int
	textCol  int

	// markLine/markCol remember where a comment or doctype started.
	markLine int
	markCol  int

	// rawTag carries the tagname into lexRawElementContent.
	rawTag string
}

// lexerInput is the character-level interface the lexer runs against.
// The decoder is its only implementation.
type lexerInput interface {
	pull() (char, *Error)
	unread() *Error
}

func newLexer(dec lexerInput, src byteSource, tokens chan<- *token, stop <-chan struct{}, opts *Options, filename string) *lexer {
	return &lexer{
		dec:      dec,
		src:      src,
		tokens:   tokens,
		stop:     stop,
		opts:     opts,
		filename: filename,
	}
}

// run drives the state machine until a terminal state is reached, then
// closes the token channel and releases the byte source. The lexer owns
// the decoder and source exclusively for the lifetime of one parse.
func (l *lexer) run() {
	defer close(l.tokens)
	defer l.src.Close()
	for state := l.lexTextContent; state != nil; {
		state = state()
	}
}

// emit sends a token downstream. It returns false when the parse has
// been cancelled; states bail out by returning nil.
func (l *lexer) emit(typ tokenType, val string, line, col int) bool {
	select {
	case l.tokens <- &token{typ: typ, val: val, line: line, col: col}:
		return true
	case <-l.stop:
		return false
	}
}

// emitError forwards a terminal error token. The state machine never
// retries; it emits the error and exits.
func (l *lexer) emitError(err *Error) {
	select {
	case l.tokens <- &token{typ: tokenError, val: err.OrigError.Error(), line: err.Line, col: err.Column, err: err}:
	case <-l.stop:
	}
}

// pull fetches the next codepoint. On a decode or I/O failure the error
// token has already been emitted and the caller must terminate.
func (l *lexer) pull() (char, bool) {
	c, err := l.dec.pull()
	if err != nil {
		l.emitError(err)
		return char{}, false
	}
	return c, true
}

// unread pushes the last codepoint back into the decoder.
func (l *lexer) unread() bool {
	if err := l.dec.unread(); err != nil {
		l.emitError(err)
		return false
	}
	return true
}

func (l *lexer) bufferChar(c char) {
	l.bufferRune(c.r, c.line, c.col)
}

func (l *lexer) bufferRune(r rune, line, col int) {
	if l.text.Len() == 0 {
		l.textLine, l.textCol = line, col
	}
	l.text.WriteRune(r)
}

func (l *lexer) bufferString(s string, line, col int) {
	if s == "" {
		return
	}
	if l.text.Len() == 0 {
		l.textLine, l.textCol = line, col
	}
	l.text.WriteString(s)
}

// flushText emits the accumulated character data, if any. Empty text
// tokens are suppressed.
func (l *lexer) flushText() bool {
	if l.text.Len() == 0 {
		return true
	}
	val := l.text.String()
	l.text.Reset()
	return l.emit(tokenTextContent, val, l.textLine, l.textCol)
}

// lexTextContent is the initial state. It accumulates character data
// until a markup construct or the end of input is encountered.
func (l *lexer) lexTextContent() lexerStateFn {
	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		switch c.r {
		case eofRune:
			if !l.flushText() {
				return nil
			}
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		case '<':
			next, stay := l.lexTagOpen(c)
			if !stay {
				return next
			}
		default:
			l.bufferChar(c)
		}
	}
}

// lexTagOpen decides what a '<' introduces: an opening tag, a closing
// tag, a comment, a doctype, or nothing at all (a literal '<' in text).
// It returns (nextState, false) to leave lexTextContent, or (nil, true)
// to keep accumulating text.
func (l *lexer) lexTagOpen(lt char) (lexerStateFn, bool) {
	c, ok := l.pull()
	if !ok {
		return nil, false
	}
	switch {
	case isLegalLeadingTagNameChar(c.r):
		if !l.flushText() {
			return nil, false
		}
		if !l.unread() {
			return nil, false
		}
		return l.lexOpeningTagContents, false
	case c.r == '/':
		c2, ok := l.pull()
		if !ok {
			return nil, false
		}
		if isLegalLeadingTagNameChar(c2.r) {
			if !l.flushText() {
				return nil, false
			}
			if !l.unread() {
				return nil, false
			}
			return l.lexClosingTagName, false
		}
		// A literal "</" in text.
		l.bufferRune('<', lt.line, lt.col)
		l.bufferRune('/', c.line, c.col)
		if !l.unread() {
			return nil, false
		}
		return nil, true
	case c.r == '!':
		return l.lexMarkupDeclaration(lt)
	default:
		// A literal '<' in text.
		l.bufferRune('<', lt.line, lt.col)
		if !l.unread() {
			return nil, false
		}
		return nil, true
	}
}

// lexMarkupDeclaration handles the "<!" prefix: "<!--" starts a comment
// and "<!DOCTYPE" followed by whitespace starts a doctype declaration
// (case-sensitive, uppercase). Anything else falls back to literal text.
func (l *lexer) lexMarkupDeclaration(lt char) (lexerStateFn, bool) {
	c, ok := l.pull()
	if !ok {
		return nil, false
	}

	if c.r == '-' {
		c2, ok := l.pull()
		if !ok {
			return nil, false
		}
		if c2.r == '-' {
			if !l.flushText() {
				return nil, false
			}
			l.markLine, l.markCol = lt.line, lt.col
			return l.lexCommentTag, false
		}
		l.bufferString("<!-", lt.line, lt.col)
		if !l.unread() {
			return nil, false
		}
		return nil, true
	}

	if c.r == 'D' {
		matched := "<!D"
		for _, want := range "OCTYPE" {
			cc, ok := l.pull()
			if !ok {
				return nil, false
			}
			if cc.r != want {
				l.bufferString(matched, lt.line, lt.col)
				if !l.unread() {
					return nil, false
				}
				return nil, true
			}
			matched += string(want)
		}
		ws, ok := l.pull()
		if !ok {
			return nil, false
		}
		if !isWhitespace(ws.r) {
			l.bufferString(matched, lt.line, lt.col)
			if !l.unread() {
				return nil, false
			}
			return nil, true
		}
		if !l.flushText() {
			return nil, false
		}
		l.markLine, l.markCol = lt.line, lt.col
		return l.lexDoctypeDeclaration, false
	}

	l.bufferString("<!", lt.line, lt.col)
	if !l.unread() {
		return nil, false
	}
	return nil, true
}

// lexTagName reads a tagname whose legal leading character has been
// unread by the caller. The terminating character is left unread.
func (l *lexer) lexTagName() (name string, line, col int, ok bool) {
	c, ok := l.pull()
	if !ok {
		return "", 0, 0, false
	}
	line, col = c.line, c.col
	var b strings.Builder
	b.WriteRune(c.r)
	for {
		c, ok = l.pull()
		if !ok {
			return "", 0, 0, false
		}
		if !isLegalTagNameChar(c.r) {
			if !l.unread() {
				return "", 0, 0, false
			}
			break
		}
		b.WriteRune(c.r)
	}
	return b.String(), line, col, true
}

// lexOpeningTagContents lexes everything between '<' and the tag's
// terminating '>': the tagname, the attributes, and the decision
// whether the element has a body.
func (l *lexer) lexOpeningTagContents() lexerStateFn {
	name, line, col, ok := l.lexTagName()
	if !ok {
		return nil
	}
	if !l.emit(tokenOpeningTagName, name, line, col) {
		return nil
	}
	isVoid := isVoidElement(name)
	isRaw := isRawTextElement(name)

	// prev tracks the last non-whitespace character so that '/'
	// immediately before '>' can be detected across whitespace.
	var prev rune
	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		switch {
		case c.r == eofRune:
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		case c.r == '>':
			if isVoid || (!l.opts.IgnoreSelfClosingSyntax && prev == '/') {
				if !l.emit(tokenSelfClosingTagEnd, "", c.line, c.col) {
					return nil
				}
				return l.lexTextContent
			}
			if !l.emit(tokenOpeningTagEnd, "", c.line, c.col) {
				return nil
			}
			if isRaw {
				l.rawTag = name
				return l.lexRawElementContent
			}
			return l.lexTextContent
		case isWhitespace(c.r):
			// Skipped; prev deliberately keeps its value.
		case isLegalAttributeNameChar(c.r):
			if !l.unread() {
				return nil
			}
			if !l.lexOpeningTagAttribute() {
				return nil
			}
			prev = 0
		default:
			prev = c.r
		}
	}
}

// lexOpeningTagAttribute emits exactly one attribute name and, if an
// '=' follows, exactly one attribute value. The first name character
// has been unread by the caller. Returns false to terminate lexing.
func (l *lexer) lexOpeningTagAttribute() bool {
	c, ok := l.pull()
	if !ok {
		return false
	}
	nameLine, nameCol := c.line, c.col
	var name strings.Builder
	name.WriteRune(c.r)
	for {
		c, ok = l.pull()
		if !ok {
			return false
		}
		if !isLegalAttributeNameChar(c.r) {
			break
		}
		name.WriteRune(c.r)
	}
	if !l.emit(tokenAttributeName, name.String(), nameLine, nameCol) {
		return false
	}

	if c.r != '=' {
		// Boolean attribute; hand the terminator back.
		return l.unread()
	}

	c, ok = l.pull()
	if !ok {
		return false
	}
	switch {
	case isAttributeValueQuote(c.r):
		quote := c.r
		valLine, valCol := c.line, c.col
		var val strings.Builder
		for {
			c, ok = l.pull()
			if !ok {
				return false
			}
			if c.r == eofRune {
				// Truncated input; emit what was collected.
				if !l.emit(tokenAttributeValue, val.String(), valLine, valCol) {
					return false
				}
				l.emit(tokenEOF, "", c.line, c.col)
				return false
			}
			if c.r == '\\' {
				c2, ok := l.pull()
				if !ok {
					return false
				}
				if c2.r == eofRune {
					if !l.emit(tokenAttributeValue, val.String(), valLine, valCol) {
						return false
					}
					l.emit(tokenEOF, "", c2.line, c2.col)
					return false
				}
				val.WriteRune(c2.r)
				continue
			}
			if c.r == quote {
				break
			}
			val.WriteRune(c.r)
		}
		return l.emit(tokenAttributeValue, val.String(), valLine, valCol)
	case isLegalUnquotedAttributeValueChar(c.r):
		valLine, valCol := c.line, c.col
		var val strings.Builder
		val.WriteRune(c.r)
		for {
			c, ok = l.pull()
			if !ok {
				return false
			}
			if !isLegalUnquotedAttributeValueChar(c.r) {
				if !l.unread() {
					return false
				}
				break
			}
			val.WriteRune(c.r)
		}
		return l.emit(tokenAttributeValue, val.String(), valLine, valCol)
	default:
		// '=' with nothing usable after it; empty value.
		if !l.unread() {
			return false
		}
		return l.emit(tokenAttributeValue, "", c.line, c.col)
	}
}

// lexClosingTagName lexes the tagname of "</tag>".
func (l *lexer) lexClosingTagName() lexerStateFn {
	name, line, col, ok := l.lexTagName()
	if !ok {
		return nil
	}
	if !l.emit(tokenClosingTagName, name, line, col) {
		return nil
	}
	return l.lexClosingTagEnd
}

// lexClosingTagEnd discards everything up to and including the '>' of a
// closing tag.
func (l *lexer) lexClosingTagEnd() lexerStateFn {
	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		if c.r == eofRune {
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		}
		if c.r == '>' {
			return l.lexTextContent
		}
	}
}

// lexCommentTag buffers codepoints until the terminating "-->" and
// emits the comment trimmed of surrounding whitespace.
func (l *lexer) lexCommentTag() lexerStateFn {
	var buf []rune
	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		if c.r == eofRune {
			// Truncated comment; emit what was collected.
			if !l.emit(tokenComment, strings.TrimSpace(string(buf)), l.markLine, l.markCol) {
				return nil
			}
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		}
		buf = append(buf, c.r)
		n := len(buf)
		if n >= 3 && buf[n-3] == '-' && buf[n-2] == '-' && buf[n-1] == '>' {
			val := strings.TrimSpace(string(buf[:n-3]))
			if !l.emit(tokenComment, val, l.markLine, l.markCol) {
				return nil
			}
			return l.lexTextContent
		}
	}
}

// lexDoctypeDeclaration reads the identifier following "<!DOCTYPE"
// until '>' and emits it trimmed.
func (l *lexer) lexDoctypeDeclaration() lexerStateFn {
	var val []rune
	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		if c.r == eofRune {
			if !l.emit(tokenDoctypeDeclaration, strings.TrimSpace(string(val)), l.markLine, l.markCol) {
				return nil
			}
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		}
		if c.r == '>' {
			if !l.emit(tokenDoctypeDeclaration, strings.TrimSpace(string(val)), l.markLine, l.markCol) {
				return nil
			}
			return l.lexTextContent
		}
		val = append(val, c.r)
	}
}

// lexRawElementContent reads the body of a raw-text element (script,
// style, textarea, title) verbatim. A mini-state tracks unterminated
// quotes so that a closing tag inside a string literal does not end the
// element; outside quotes the element ends at "</tagname" followed by a
// non-tagname character.
func (l *lexer) lexRawElementContent() lexerStateFn {
	tag := l.rawTag
	l.rawTag = ""
	closing := "</" + asciiLower(tag)

	var isQuote func(rune) bool
	switch asciiLower(tag) {
	case "script":
		isQuote = isScriptQuote
	case "style":
		isQuote = isStyleQuote
	default:
		// textarea and title have no string-literal syntax.
		isQuote = func(rune) bool { return false }
	}

	var buf []char
	var quote rune

	suffixMatches := func() bool {
		if len(buf) < len(closing) {
			return false
		}
		off := len(buf) - len(closing)
		for i := 0; i < len(closing); i++ {
			r := buf[off+i].r
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			if r != rune(closing[i]) {
				return false
			}
		}
		return true
	}
	emitBody := func(n int) bool {
		if n == 0 {
			return true
		}
		rs := make([]rune, n)
		for i := 0; i < n; i++ {
			rs[i] = buf[i].r
		}
		return l.emit(tokenTextContent, string(rs), buf[0].line, buf[0].col)
	}

	for {
		c, ok := l.pull()
		if !ok {
			return nil
		}
		if c.r == eofRune {
			if !emitBody(len(buf)) {
				return nil
			}
			l.emit(tokenEOF, "", c.line, c.col)
			return nil
		}
		buf = append(buf, c)

		if quote != 0 {
			switch c.r {
			case '\\':
				c2, ok := l.pull()
				if !ok {
					return nil
				}
				if c2.r == eofRune {
					if !emitBody(len(buf)) {
						return nil
					}
					l.emit(tokenEOF, "", c2.line, c2.col)
					return nil
				}
				buf = append(buf, c2)
			case quote:
				quote = 0
			}
			continue
		}
		if isQuote(c.r) {
			quote = c.r
			continue
		}

		if suffixMatches() {
			c2, ok := l.pull()
			if !ok {
				return nil
			}
			if isLegalTagNameChar(c2.r) {
				// A longer tagname, e.g. "</scripts"; keep going.
				buf = append(buf, c2)
				continue
			}
			if !l.unread() {
				return nil
			}
			nameStart := len(buf) - len(closing) + 2
			if !emitBody(len(buf) - len(closing)) {
				return nil
			}
			nameRunes := make([]rune, 0, len(closing)-2)
			for _, cc := range buf[nameStart:] {
				nameRunes = append(nameRunes, cc.r)
			}
			if !l.emit(tokenClosingTagName, string(nameRunes), buf[nameStart].line, buf[nameStart].col) {
				return nil
			}
			return l.lexClosingTagEnd
		}
	}
}
