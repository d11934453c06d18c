package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/dombind/script"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		showTree bool
	)

	cmd := &cobra.Command{
		Use:   "run <file.js>",
		Short: "Evaluate a script against a fresh document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			e, err := a.newEngine(ctx, "")
			if err != nil {
				return err
			}
			defer func() {
				if err := e.Close(context.Background()); err != nil {
					a.logger.Warn("close engine", zap.Error(err))
				}
			}()

			out := cmd.OutOrStdout()
			rt := script.New(e.Context(),
				script.WithLogger(a.logger.Named("script")),
				script.WithStdout(out))
			defer rt.Close()

			v, err := rt.RunContext(ctx, args[0], string(src))
			if err != nil {
				return err
			}
			if v != nil && !goja.IsUndefined(v) {
				fmt.Fprintln(out, v.String())
			}
			if showTree {
				fmt.Fprint(out, renderTree(treeRows(e.Context().Document().AsNode())))
			}
			if errs := rt.Errors(); len(errs) > 0 {
				for _, err := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "listener error: %v\n", err)
				}
				return fmt.Errorf("%d listener(s) threw", len(errs))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "abort the script after this long (0 disables)")
	cmd.Flags().BoolVar(&showTree, "tree", false, "print the document tree afterwards")
	return cmd
}
