package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/opd-ai/go-sketch/internal/config"
	"github.com/opd-ai/go-sketch/internal/lua"
	"github.com/opd-ai/go-sketch/pkg/sketch"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <run.yaml> [script.lua]",
	Short: "Check a run file and, optionally, load a script",
	Long: `Validate parses and checks the run file, printing every error and warning.
When a script is given it is also loaded, which runs its top level and
checks that it defines setup or draw and a valid settings table.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var script string
		if len(args) == 2 {
			script = args[1]
		}
		return validate(cmd.OutOrStdout(), args[0], script)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(w io.Writer, configPath, scriptPath string) error {
	out := termenv.NewOutput(w)

	cfg, err := config.ParseFile(configPath)
	if err != nil {
		fmt.Fprintln(w, out.String("✗ "+err.Error()).Foreground(termenv.ANSIRed))
		return err
	}

	result := config.Validate(cfg)
	for _, e := range result.Errors {
		fmt.Fprintln(w, out.String("✗ "+e.Error()).Foreground(termenv.ANSIRed))
	}
	for _, wn := range result.Warnings {
		fmt.Fprintln(w, out.String("! "+wn.Error()).Foreground(termenv.ANSIYellow))
	}
	if err := result.Error(); err != nil {
		return err
	}
	fmt.Fprintln(w, out.String("✓ "+configPath).Foreground(termenv.ANSIGreen))

	if scriptPath == "" {
		return nil
	}
	sk, err := lua.Load(scriptPath, cfg.LuaConfig(sketch.NopLogger()))
	if err != nil {
		fmt.Fprintln(w, out.String("✗ "+err.Error()).Foreground(termenv.ANSIRed))
		return err
	}
	defer sk.Close()
	fmt.Fprintln(w, out.String("✓ "+scriptPath).Foreground(termenv.ANSIGreen))
	return nil
}
