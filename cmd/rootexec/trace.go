package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/rootexec/internal/resolve"
)

var (
	traceRootFlag     string
	traceMaxDepthFlag int
	traceJSONFlag     bool
)

var traceCmd = &cobra.Command{
	Use:   "trace <executable>",
	Short: "Print the interpreter chain for an executable",
	Long: `Resolve and print the chain of interpreters the kernel would invoke
to run an executable: the ELF PT_INTERP entry or #! line of each file,
followed recursively.

With --root, every absolute path in the chain is resolved beneath the
given directory, so a chroot's interpreter chain can be inspected from
outside it without privileges:

  rootexec trace --root /srv/jail /bin/sh

A chain ends cleanly only at an ELF object with no program-header
table; for ordinary executables the final message explains where the
kernel's own resolution would stop.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		r := &resolve.Resolver{
			Root:     traceRootFlag,
			MaxDepth: traceMaxDepthFlag,
		}
		chain, err := r.Resolve(args[0])

		if traceJSONFlag {
			printJSON(cmd.OutOrStdout(), struct {
				Chain resolve.Chain `json:"chain"`
				Error string        `json:"error,omitempty"`
			}{Chain: chain, Error: errString(err)})
		} else {
			fmt.Fprint(cmd.OutOrStdout(), chain.String())
		}

		if err != nil {
			if !traceJSONFlag {
				printError(err)
			}
			exitWithCode(codeFor(err))
		}
	},
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func init() {
	traceCmd.Flags().StringVar(&traceRootFlag, "root", "", "resolve chain paths beneath this directory")
	traceCmd.Flags().IntVar(&traceMaxDepthFlag, "max-depth", resolve.DefaultMaxDepth, "maximum number of interpreter hops")
	traceCmd.Flags().BoolVar(&traceJSONFlag, "json", false, "print the chain as JSON")
}
