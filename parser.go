package htmlstream

import (
	"github.com/juju/errors"
)

// stringSourceName is the filename reported for in-memory input.
const stringSourceName = "<string>"

// Parser creates parse pipelines for files and strings. A Parser is
// immutable after construction and safe for concurrent use; every
// ParseFile/ParseString call spins up its own independent pipeline.
type Parser struct {
	opts *Options
}

// NewParser creates a parser with the given options. Pass nil for the
// defaults.
func NewParser(opts *Options) *Parser {
	return &Parser{opts: opts.normalized()}
}

// Options returns the parser's effective configuration.
func (p *Parser) Options() Options {
	return *p.opts
}

// ParseFile opens path on the configured filesystem and starts parsing
// it. The returned ParseResult owns the file handle; it is released
// when the input is exhausted, on error, or on Close.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	file, err := p.opts.Fs.Open(path)
	if err != nil {
		return nil, &Error{
			Filename:  path,
			Sender:    "io",
			OrigError: errors.Trace(err),
		}
	}
	logf("[parser] parsing file %s", path)
	return p.parse(path, newFileSource(file)), nil
}

// ParseString starts parsing an in-memory string.
func (p *Parser) ParseString(text string) (*ParseResult, error) {
	logf("[parser] parsing string (%d bytes)", len(text))
	return p.parse(stringSourceName, newMemSource([]byte(text))), nil
}

// parse wires up the pipeline: byte source -> decoder -> lexer -> token
// channel -> tree builder -> root node stream. The lexer and builder
// each run on their own goroutine; channel capacity is the only
// read-ahead, so a stalled consumer suspends the whole chain.
func (p *Parser) parse(name string, src byteSource) *ParseResult {
	stop := make(chan struct{})
	tokens := make(chan *token, p.opts.TokenBufferSize)
	root := newNodeStream(p.opts.NodeBufferSize)

	go newLexer(newDecoder(src, name), src, tokens, stop, p.opts, name).run()
	go newTreeBuilder(tokens, stop, p.opts, name).run(root)

	return newParseResult(name, root, stop)
}
