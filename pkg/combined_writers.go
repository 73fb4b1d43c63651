package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all of its writers, e.g. stdout and a rotating log file.
// A failing writer does not stop the others; all errors are returned together.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

func (cw *CombinedWriter) Write(p []byte) (n int, err error) {
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		n += written
	}
	return n, err
}
