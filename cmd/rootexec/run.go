package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/rootexec/internal/enter"
	"github.com/tsukumogami/rootexec/internal/resolve"
)

var runCmd = &cobra.Command{
	Use:   "run <new-root> <executable> [args...]",
	Short: "Chroot into a directory and exec an executable",
	Long: `Change the filesystem root to <new-root>, change directory to the
new /, and replace the rootexec process with <executable> and its
arguments. The executable path is interpreted inside the new root.

On success nothing is printed and rootexec is gone; the target owns
the process. When the exec fails with "file not found" or "permission
denied", the interpreter chain of the executable is resolved to name
the file inside the root that is actually at fault.

Requires the privileges chroot itself requires.

Examples:
  rootexec run /srv/jail /bin/sh
  rootexec run /srv/jail /usr/bin/app --port 8080`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		newRoot, exe := args[0], args[1]

		err := enter.Run(newRoot, exe, args[2:])
		// enter.Run returns only on failure.
		var chrootErr *enter.ChrootError
		var chdirErr *enter.ChdirError
		var execErr *enter.ExecError
		switch {
		case errors.As(err, &chrootErr):
			printError(err)
			exitWithCode(ExitChrootFailed)
		case errors.As(err, &chdirErr):
			printError(err)
			exitWithCode(ExitChdirFailed)
		case errors.As(err, &execErr) && execErr.Diagnosable():
			// We are inside the new root now; resolve the chain the
			// kernel just refused and name the file at fault.
			r := &resolve.Resolver{}
			if _, derr := r.Resolve(exe); derr != nil {
				printError(derr)
				exitWithCode(codeFor(derr))
			}
			// The whole chain checks out from here; report the
			// original failure.
			printError(err)
			exitWithCode(ExitExecFailed)
		default:
			printError(err)
			exitWithCode(ExitExecFailed)
		}
	},
}

func init() {
	// Flags after the executable belong to the target, not to us.
	runCmd.Flags().SetInterspersed(false)
}
