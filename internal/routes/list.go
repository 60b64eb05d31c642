package routes

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Print writes entries as an aligned table.
func Print(w io.Writer, entries []Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tHANDLER\tMIDDLEWARE")
	for _, e := range entries {
		mw := strings.Join(e.Middleware, ", ")
		if mw == "" {
			mw = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Method, e.Path, e.Handler, mw)
	}
	return tw.Flush()
}
