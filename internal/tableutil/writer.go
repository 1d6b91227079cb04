package tableutil

import (
	"io"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter for label/value blocks. Label cells are padded to
// at least minWidth so blocks separated by blank lines still line up.
func New(out io.Writer, minWidth int) *tabwriter.Writer {
	return tabwriter.NewWriter(out, minWidth, 4, 1, ' ', 0)
}
