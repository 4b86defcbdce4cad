package htmlstream

import (
	"log"
	"os"
)

type htmlstreamOptions struct {
	debug bool
}

var (
	options = htmlstreamOptions{}
	logger  = log.New(os.Stdout, "[htmlstream] ", log.LstdFlags)
)

// SetDebug enables debug logging to STDOUT. Only the start of each
// ParseFile/ParseString call is logged; parse completion and errors
// are not.
func SetDebug(b bool) {
	options.debug = b
}

func logf(format string, items ...interface{}) {
	if options.debug {
		logger.Printf(format, items...)
	}
}
