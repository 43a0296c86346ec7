package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bcilab",
	Short: "Brain-computer interface research dashboard",
	Long: `bcilab runs decoding experiments for a brain-computer interface demo.

Create experiments with a target vocabulary, run sessions against them,
record decoded trials and follow accuracy on the web dashboard.`,
	SilenceUsage: true,
}

// userFlag overrides the configured default user for one invocation.
var userFlag string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id to act as (default $BCILAB_USER)")
}
