// Command payctl is the operator's tool for previewing fees and exercising
// the Deposyt webhook by hand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "payctl",
		Short:         "DermaPay operator tooling",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(feeCmd())
	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(notifyCmd())

	return rootCmd
}
