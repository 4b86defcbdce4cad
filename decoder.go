package htmlstream

import (
	"fmt"
	"io"

	"github.com/juju/errors"
)

const (
	// eofRune is returned by the decoder once all input has been
	// consumed. The value -1 is chosen because it's an invalid rune
	// value that cannot appear in decoded input.
	eofRune rune = -1
)

// encoding identifies the byte encoding of the input, detected from the
// byte-order mark on first pull.
type encoding int

const (
	encUTF8 encoding = iota
	encUTF16LE
	encUTF16BE
	encUTF32LE
	encUTF32BE
)

func (e encoding) String() string {
	switch e {
	case encUTF8:
		return "UTF-8"
	case encUTF16LE:
		return "UTF-16LE"
	case encUTF16BE:
		return "UTF-16BE"
	case encUTF32LE:
		return "UTF-32LE"
	case encUTF32BE:
		return "UTF-32BE"
	}
	return "Unknown"
}

// char is one decoded codepoint together with the position it was read
// at. Positions are 1-based; the end of input is reported as eofRune at
// the position following the last character.
type char struct {
	r    rune
	line int
	col  int
}

// decoder turns a byteSource into a stream of positioned codepoints.
// It owns the line/column counters and the single-slot pushback; both
// are single-owner state, confined here for the lifetime of one parse.
type decoder struct {
	src      byteSource
	filename string

	enc     encoding
	started bool
	pending []byte // sniffed BOM bytes not consumed by the match

	line int // position of the next codepoint
	col  int

	last    char
	hasLast bool
	pushed  bool
}

func newDecoder(src byteSource, filename string) *decoder {
	return &decoder{
		src:      src,
		filename: filename,
		line:     1,
		col:      1,
	}
}

// pull decodes and returns the next codepoint. Once the input is
// exhausted it keeps returning eofRune at the final position.
func (d *decoder) pull() (char, *Error) {
	if d.pushed {
		d.pushed = false
		return d.last, nil
	}
	if !d.started {
		if err := d.detectBOM(); err != nil {
			return char{}, err
		}
		d.started = true
	}
	r, err := d.decodeRune()
	if err != nil {
		return char{}, err
	}
	c := char{r: r, line: d.line, col: d.col}
	if r != eofRune {
		if isLineBreak(r) {
			d.line++
			d.col = 1
		} else {
			d.col++
		}
	}
	d.last = c
	d.hasLast = true
	return c, nil
}

// unread pushes the most recently pulled codepoint back so the next
// pull returns it again, position included. Only one slot exists;
// unreading twice without an intervening pull is a protocol violation.
func (d *decoder) unread() *Error {
	if d.pushed || !d.hasLast {
		return &Error{
			Filename:  d.filename,
			Line:      d.line,
			Column:    d.col,
			Sender:    "lexer",
			OrigError: errors.New("double unread without an intervening pull"),
		}
	}
	d.pushed = true
	return nil
}

// detectBOM inspects up to the first four bytes for a byte-order mark.
// Bytes sniffed but not part of a match are replayed before further
// source reads. Without a mark the input is treated as UTF-8.
func (d *decoder) detectBOM() *Error {
	var sniff [4]byte
	n := 0
	for n < 4 {
		b, err := d.src.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.ioError(err)
		}
		sniff[n] = b
		n++
	}

	switch {
	case n >= 3 && sniff[0] == 0xEF && sniff[1] == 0xBB && sniff[2] == 0xBF:
		d.enc = encUTF8
		d.pending = append(d.pending, sniff[3:n]...)
	case n >= 4 && sniff[0] == 0x00 && sniff[1] == 0x00 && sniff[2] == 0xFE && sniff[3] == 0xFF:
		d.enc = encUTF32BE
	case n >= 4 && sniff[0] == 0xFF && sniff[1] == 0xFE && sniff[2] == 0x00 && sniff[3] == 0x00:
		d.enc = encUTF32LE
	case n >= 2 && sniff[0] == 0xFE && sniff[1] == 0xFF:
		d.enc = encUTF16BE
		d.pending = append(d.pending, sniff[2:n]...)
	case n >= 2 && sniff[0] == 0xFF && sniff[1] == 0xFE:
		d.enc = encUTF16LE
		d.pending = append(d.pending, sniff[2:n]...)
	default:
		d.enc = encUTF8
		d.pending = append(d.pending, sniff[:n]...)
	}
	return nil
}

// nextByte returns the next raw byte, draining replayed sniff bytes
// before touching the source again.
func (d *decoder) nextByte() (byte, bool, *Error) {
	if len(d.pending) > 0 {
		b := d.pending[0]
		d.pending = d.pending[1:]
		return b, true, nil
	}
	b, err := d.src.next()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, d.ioError(err)
	}
	return b, true, nil
}

func (d *decoder) decodeRune() (rune, *Error) {
	switch d.enc {
	case encUTF16LE, encUTF16BE:
		return d.decodeUTF16()
	case encUTF32LE, encUTF32BE:
		return d.decodeUTF32()
	default:
		return d.decodeUTF8()
	}
}

func (d *decoder) decodeUTF8() (rune, *Error) {
	b0, ok, err := d.nextByte()
	if err != nil {
		return 0, err
	}
	if !ok {
		return eofRune, nil
	}

	var length int
	var r rune
	switch {
	case b0 < 0x80:
		return rune(b0), nil
	case b0&0xE0 == 0xC0:
		length, r = 2, rune(b0&0x1F)
	case b0&0xF0 == 0xE0:
		length, r = 3, rune(b0&0x0F)
	case b0&0xF8 == 0xF0:
		length, r = 4, rune(b0&0x07)
	default:
		return 0, d.decodeError("invalid UTF-8 leading byte 0x%02X", b0)
	}

	for i := 1; i < length; i++ {
		b, ok, err := d.nextByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, d.decodeError("unexpected EOF within a UTF-8 sequence")
		}
		if b&0xC0 != 0x80 {
			return 0, d.decodeError("invalid UTF-8 continuation byte 0x%02X", b)
		}
		r = r<<6 | rune(b&0x3F)
	}
	return r, nil
}

// decodeUTF16 decodes one code unit, combining surrogate pairs so that
// non-BMP characters survive the transfer into Go strings. A combined
// pair still advances the position counters only once.
func (d *decoder) decodeUTF16() (rune, *Error) {
	unit, ok, err := d.readUTF16Unit()
	if err != nil {
		return 0, err
	}
	if !ok {
		return eofRune, nil
	}

	switch {
	case unit >= 0xD800 && unit < 0xDC00:
		lo, ok, err := d.readUTF16Unit()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, d.decodeError("unexpected EOF after a UTF-16 high surrogate")
		}
		if lo < 0xDC00 || lo > 0xDFFF {
			return 0, d.decodeError("invalid UTF-16 surrogate pair 0x%04X 0x%04X", unit, lo)
		}
		return 0x10000 + (rune(unit)-0xD800)<<10 + (rune(lo) - 0xDC00), nil
	case unit >= 0xDC00 && unit <= 0xDFFF:
		return 0, d.decodeError("unpaired UTF-16 low surrogate 0x%04X", unit)
	default:
		return rune(unit), nil
	}
}

func (d *decoder) readUTF16Unit() (uint16, bool, *Error) {
	b0, ok, err := d.nextByte()
	if err != nil || !ok {
		return 0, false, err
	}
	b1, ok, err := d.nextByte()
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, d.decodeError("truncated UTF-16 code unit")
	}
	if d.enc == encUTF16LE {
		return uint16(b0) | uint16(b1)<<8, true, nil
	}
	return uint16(b0)<<8 | uint16(b1), true, nil
}

func (d *decoder) decodeUTF32() (rune, *Error) {
	var b [4]byte
	for i := 0; i < 4; i++ {
		bb, ok, err := d.nextByte()
		if err != nil {
			return 0, err
		}
		if !ok {
			if i == 0 {
				return eofRune, nil
			}
			return 0, d.decodeError("truncated UTF-32 code unit")
		}
		b[i] = bb
	}
	var v uint32
	if d.enc == encUTF32LE {
		v = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	} else {
		v = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, d.decodeError("invalid UTF-32 codepoint 0x%X", v)
	}
	return rune(v), nil
}

func (d *decoder) decodeError(format string, args ...any) *Error {
	return &Error{
		Filename:  d.filename,
		Line:      d.line,
		Column:    d.col,
		Sender:    "decoder",
		OrigError: fmt.Errorf(format, args...),
	}
}

func (d *decoder) ioError(err error) *Error {
	return &Error{
		Filename:  d.filename,
		Line:      d.line,
		Column:    d.col,
		Sender:    "io",
		OrigError: errors.Trace(err),
	}
}
