package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/rootexec/internal/log"
)

// Version is the current version of rootexec
var Version = "0.1.0"

var (
	quietFlag     bool
	verboseFlag   bool
	debugFlag     bool
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "rootexec",
	Short: "Run an executable inside a new filesystem root, explaining interpreter failures",
	Long: `rootexec changes the filesystem root, execs a target executable and,
when the exec fails with "file not found" or "permission denied",
walks the chain of ELF PT_INTERP entries and #! shebang lines to
report which interpreter inside the new root is actually missing or
unusable.

Inside a restricted root the failing file is usually not the
executable itself but its dynamic linker or script interpreter, which
is invisible from outside the chroot. rootexec names that file.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDefault(log.Setup(os.Stderr, quietFlag, verboseFlag, debugFlag, logFormatFlag))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress warnings, print errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print operational context")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "print internal state for troubleshooting")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "text", "log output format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitWithCode(ExitUsage)
	}
}
