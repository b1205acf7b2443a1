package analysis

import (
	"fmt"
	"io"
	"os"
)

// ErrorWriter receives the failures of analyzers and comparators that write
// files. Analysis never aborts a run.
var ErrorWriter io.Writer = os.Stderr

func reportErr(what string, err error) {
	if err != nil {
		fmt.Fprintf(ErrorWriter, "analysis: %s: %v\n", what, err)
	}
}
