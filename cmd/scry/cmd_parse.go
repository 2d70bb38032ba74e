package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/scry/format"
	"github.com/dhamidi/scry/syntax"
)

func newParseCmd() *cobra.Command {
	var modeName string
	var includeTrivia bool
	var indent bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and print its concrete syntax tree as JSON",
		Long: `Parse a file and print its concrete syntax tree as JSON.

Use - to read from standard input; --mode is required in that case.
Parse diagnostics are printed to standard error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			mode, err := resolveMode(filename, modeName)
			if err != nil {
				return err
			}

			var data []byte
			if filename == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(filename)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			tree, diags := syntax.Parse(data, syntax.WithMode(mode))

			var opts []format.TreeOption
			if includeTrivia {
				opts = append(opts, format.WithTrivia())
			}
			if indent {
				opts = append(opts, format.WithIndent())
			}
			if err := format.NewTreeJSONEncoder(cmd.OutOrStdout(), opts...).Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return format.NewLineEncoder(cmd.ErrOrStderr()).Encode(filename, diags)
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "grammar to use (json, javascript, typescript); defaults to the file extension")
	cmd.Flags().BoolVar(&includeTrivia, "trivia", false, "include whitespace and comments attached to tokens")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")

	return cmd
}

func resolveMode(filename, name string) (syntax.Mode, error) {
	if name != "" {
		mode, ok := syntax.ParseMode(name)
		if !ok {
			return mode, fmt.Errorf("unknown mode: %s", name)
		}
		return mode, nil
	}
	mode, ok := syntax.ModeForPath(filename)
	if !ok {
		return mode, fmt.Errorf("cannot infer mode for %s; use --mode", filename)
	}
	return mode, nil
}
