package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/scry/codebase"
	"github.com/dhamidi/scry/format"
	"github.com/dhamidi/scry/lint"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint a directory and re-lint files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			c := codebase.New(dir, lint.NewRunner(g.config().Rules()))
			err := runWatch(cmd.Context(), c, cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func runWatch(ctx context.Context, c *codebase.Codebase, out io.Writer) error {
	enc := format.NewLineEncoder(out)

	if err := c.ScanAll(ctx); err != nil {
		return err
	}
	for _, f := range c.Files() {
		if err := enc.Encode(f.Path, f.Diagnostics); err != nil {
			return err
		}
	}

	w, err := codebase.NewWatcher(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s\n", c.RootDir())

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.Run(gctx)
	})
	group.Go(func() error {
		for change := range w.Changes() {
			if change.File == nil {
				fmt.Fprintf(out, "%s: removed\n", change.Path)
				continue
			}
			fmt.Fprintf(out, "%s: %d diagnostics\n", change.Path, len(change.File.Diagnostics))
			if err := enc.Encode(change.Path, change.File.Diagnostics); err != nil {
				return err
			}
		}
		return nil
	})
	return group.Wait()
}
