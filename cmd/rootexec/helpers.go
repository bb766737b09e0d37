package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tsukumogami/rootexec/internal/errmsg"
)

// printError prints an error to stderr, with causes and suggestions
// when stderr is a terminal.
func printError(err error) {
	errmsg.Fprint(os.Stderr, err)
}

// printJSON marshals the given value and writes it to w.
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exitWithCode(ExitGeneral)
	}
}
