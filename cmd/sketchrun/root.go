package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sketchrun",
	Short: "sketchrun runs Lua creative-coding sketches",
	Long: `sketchrun loads a Lua script defining setup() and draw(), calls setup once
and draw once per frame, and shows the result in a window or renders it headless.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
