package extract

import "errors"

// ErrUnsupportedFormat indicates a file extension with no registered
// reader.
var ErrUnsupportedFormat = errors.New("unsupported document format")
