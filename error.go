package htmlstream

import (
	"bufio"
	"fmt"
	"os"
)

// Error is used to address an error during decoding, lexing or tree
// building. Sender names the pipeline stage that produced the error
// ("io", "decoder", "lexer", "parser" or "result"); Line and Column are
// 1-based and point at the input position where the error occurred, or
// are zero for errors that have no input position (a failed open,
// ErrConsumed).
type Error struct {
	Filename  string
	Line      int
	Column    int
	Sender    string
	OrigError error
}

// Error returns a nice formatted error string.
func (e *Error) Error() string {
	s := "[Error"
	if e.Sender != "" {
		s += " (where: " + e.Sender + ")"
	}
	if e.Filename != "" {
		s += " in " + e.Filename
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" | Line %d Col %d", e.Line, e.Column)
	}
	s += "] "
	if e.OrigError != nil {
		s += e.OrigError.Error()
	}
	return s
}

// Unwrap returns the underlying error, supporting errors.Is/As.
func (e *Error) Unwrap() error {
	return e.OrigError
}

// RawLine returns the affected line from the original input, if the
// input came from a file. The file is opened on the OS filesystem and
// read as raw bytes (no BOM or encoding handling); lines are counted
// the way the decoder counts them, with each of U+000A..U+000D ending
// a line.
func (e *Error) RawLine() (line string, available bool, outErr error) {
	if e.Line <= 0 || e.Filename == "" || e.Filename == stringSourceName {
		return "", false, nil
	}

	file, err := os.Open(e.Filename)
	if err != nil {
		return "", false, err
	}
	defer func() {
		err := file.Close()
		if err != nil && outErr == nil {
			outErr = err
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		for i, b := range data {
			if b >= '\n' && b <= '\r' {
				return i + 1, data[:i], nil
			}
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	l := 0
	for scanner.Scan() {
		l++
		if l == e.Line {
			return scanner.Text(), true, nil
		}
	}
	return "", false, scanner.Err()
}
