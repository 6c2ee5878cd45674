package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X imagemin/cmd.version=...".
var version = "dev"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	flags := &optimizeFlags{}
	cmd := &cobra.Command{
		Use:   "imagemin [flags] <path|glob>...",
		Short: "imagemin - minify images seamlessly",
		Long: "imagemin optimizes images concurrently through a chain of plugins.\n\n" +
			"Results go to --out-dir, back over the sources with --in-place, or to stdout\n" +
			"when a single image is given (including one piped through stdin).",
		Example: "  imagemin images/* --out-dir=build\n" +
			"  imagemin foo.png > foo-optimized.png\n" +
			"  cat foo.png | imagemin > foo-optimized.png\n" +
			"  imagemin -p png -p strip 'assets/**/*.png' '!assets/vendor/**' -o dist -a",
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, flags, args)
		},
	}
	flags.bind(cmd)
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.AddCommand(newHistoryCmd())
	return cmd
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
