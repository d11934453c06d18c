package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/binding/events"
	"github.com/wippyai/dombind/errors"
	"github.com/wippyai/dombind/native"
)

func newDemoCmd(a *app) *cobra.Command {
	var from, hash string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a small tree, change the location hash and print what listeners see",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := a.newEngine(ctx, from)
			if err != nil {
				return err
			}
			defer func() {
				if err := e.Close(ctx); err != nil {
					a.logger.Warn("close engine", zap.Error(err))
				}
			}()
			return runDemo(cmd.OutOrStdout(), e, hash)
		},
	}

	cmd.Flags().StringVar(&from, "from", "https://x/#b", "initial location")
	cmd.Flags().StringVar(&hash, "hash", "#a", "hash to navigate to")
	return cmd
}

func runDemo(out io.Writer, e *native.Engine, hash string) error {
	bc := e.Context()
	doc := bc.Document()
	win := bc.Window()
	es := bc.CreateExceptionState()

	body, ok := doc.Body()
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "element", "body")
	}
	for _, s := range []string{"first", "second"} {
		p, err := doc.CreateElement("p", es)
		if err != nil {
			return err
		}
		text, err := doc.CreateTextNode(s, es)
		if err != nil {
			return err
		}
		if _, err := binding.AppendChild(p, text, es); err != nil {
			return err
		}
		if _, err := binding.AppendChild(body, p, es); err != nil {
			return err
		}
	}
	fmt.Fprint(out, renderTree(treeRows(doc.AsNode())))

	stray, err := doc.CreateElement("div", es)
	if err != nil {
		return err
	}
	if _, err := body.RemoveChild(stray, es); err != nil {
		fmt.Fprintf(out, "removeChild(stray): %s\n", errors.NativeMessage(err))
	}
	stray.Release()

	seen := 0
	l := binding.NewEventListener(func(ev *binding.Event) {
		seen++
		hc, ok := events.AsHashchangeEvent(ev)
		if !ok {
			fmt.Fprintf(out, "%s: not a hashchange event\n", ev.Type())
			return
		}
		fmt.Fprintf(out, "%s: old_url=%s new_url=%s trusted=%t\n",
			ev.Type(), hc.OldURL(), hc.DupNewURL(), ev.IsTrusted())
	})
	if err := win.AddEventListener("hashchange", l, nil, es); err != nil {
		return err
	}
	defer func() {
		_ = win.RemoveEventListener("hashchange", l, nil)
	}()

	if err := win.SetHash(hash, es); err != nil {
		return err
	}
	fmt.Fprintf(out, "location: %s, listener calls: %d\n", win.Href(), seen)
	return nil
}
