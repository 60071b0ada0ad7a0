// Command riscvc compiles a single source file to RISC-V 32-bit assembly.
package main

import (
	"fmt"
	"os"

	"riscvc/internal/clog"
	"riscvc/internal/driver"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, color.RedString("riscvc: %s\n", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opt driver.Options

	cmd := &cobra.Command{
		Use:   "riscvc <source-file>",
		Short: "Compile a source file to RISC-V 32-bit assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			log := clog.New(opt.Verbose)
			return driver.Run(opt, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opt.Out, "output-file", "o", "", "write assembly to this file (default: input basename with .asm suffix)")
	flags.StringVarP(&opt.TokenFile, "token-file", "t", "", "dump the lexed token stream to this file")
	flags.StringVarP(&opt.ASTFile, "ast-file", "a", "", "dump the syntax tree to this file")
	flags.StringVarP(&opt.IRFile, "ir-file", "i", "", "dump the three-address IR to this file")
	flags.IntVarP(&opt.Optimize, "optimize", "O", 0, "optimisation level (reserved, no effect yet)")
	flags.BoolVarP(&opt.Verbose, "verbose", "v", false, "log each compiler stage to stderr")

	return cmd
}
