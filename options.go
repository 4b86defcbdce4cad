package htmlstream

import "github.com/spf13/afero"

// TagNameCasing selects how tagnames are normalized before they are
// attached to element nodes and matched against closing tags.
type TagNameCasing int

const (
	// TagNameLower lowercases all tagnames (default).
	TagNameLower TagNameCasing = iota

	// TagNameUpper uppercases all tagnames.
	TagNameUpper

	// TagNamePreserve keeps tagnames exactly as written. A closing tag
	// whose casing differs from every open ancestor is treated as a
	// stray close and ignored.
	TagNamePreserve
)

func (c TagNameCasing) String() string {
	switch c {
	case TagNameUpper:
		return "upper"
	case TagNamePreserve:
		return "preserve"
	default:
		return "lower"
	}
}

// Options configure a Parser. The zero value of each field selects the
// documented default, so &Options{} behaves like DefaultOptions().
type Options struct {
	// TagNameCasing is applied to both opening and closing tagnames.
	TagNameCasing TagNameCasing

	// IgnoreSelfClosingSyntax treats '/>' on non-void elements like
	// '>': the element gets a body. Void elements stay bodyless.
	IgnoreSelfClosingSyntax bool

	// StripComments drops comment nodes in the tree builder instead of
	// emitting them.
	StripComments bool

	// TokenBufferSize is the capacity of the lexer's token channel.
	TokenBufferSize int

	// NodeBufferSize is the capacity of each node stream, the root's
	// and every element's child stream alike.
	NodeBufferSize int

	// Fs is the filesystem ParseFile reads from. Defaults to the OS
	// filesystem.
	Fs afero.Fs
}

const (
	defaultTokenBufferSize = 64
	defaultNodeBufferSize  = 16
)

// DefaultOptions returns the documented defaults.
func DefaultOptions() *Options {
	return &Options{
		TagNameCasing:   TagNameLower,
		TokenBufferSize: defaultTokenBufferSize,
		NodeBufferSize:  defaultNodeBufferSize,
		Fs:              afero.NewOsFs(),
	}
}

// normalized returns a copy of opts with zero-valued fields replaced by
// their defaults. A nil opts yields DefaultOptions().
func (opts *Options) normalized() *Options {
	if opts == nil {
		return DefaultOptions()
	}
	out := *opts
	if out.TokenBufferSize <= 0 {
		out.TokenBufferSize = defaultTokenBufferSize
	}
	if out.NodeBufferSize <= 0 {
		out.NodeBufferSize = defaultNodeBufferSize
	}
	if out.Fs == nil {
		out.Fs = afero.NewOsFs()
	}
	return &out
}
