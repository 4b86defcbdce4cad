package htmlstream

// Version string
const Version = "v1"

// DefaultParser is the parser behind the package-level ParseFile and
// ParseString shortcuts. It runs with DefaultOptions.
var DefaultParser = NewParser(nil)

// Must panics if a parse could not be started. This is how you would
// use it:
//
//	result := htmlstream.Must(htmlstream.ParseFile("templates/base.html"))
func Must(result *ParseResult, err error) *ParseResult {
	if err != nil {
		panic(err)
	}
	return result
}

// ParseFile parses a file using the default parser.
func ParseFile(path string) (*ParseResult, error) {
	return DefaultParser.ParseFile(path)
}

// ParseString parses an in-memory string using the default parser.
func ParseString(text string) (*ParseResult, error) {
	return DefaultParser.ParseString(text)
}
