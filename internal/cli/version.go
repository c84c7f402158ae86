package cli

import (
	"fmt"
	"io"
)

// Version is the current version of jsxsplit
const Version = "0.1.0"

// ShowVersion writes the version information
func ShowVersion(w io.Writer) {
	fmt.Fprintf(w, "jsxsplit version %s\n", Version)
}
