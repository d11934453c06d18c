package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wippyai/dombind/native"
)

type app struct {
	v         *viper.Viper
	cfg       config
	logger    *zap.Logger
	logCloser io.Closer
	cfgFile   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:          "domrun",
		Short:        "Run scripts against a native DOM engine through typed bindings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./domrun.yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-file", "", "also write JSON logs to this file, rotated by size")
	flags.String("url", "about:blank", "initial window location")
	flags.Uint32("memory-pages", 0, "native heap limit in 64KiB pages (0 for the default)")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = a.v.BindPFlag("engine.url", flags.Lookup("url"))
	_ = a.v.BindPFlag("engine.memory_pages", flags.Lookup("memory-pages"))

	root.AddCommand(
		newRunCmd(a),
		newDemoCmd(a),
		newTUICmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logCloser = closer

	a.logger.Debug("configuration loaded",
		zap.String("url", cfg.Engine.URL),
		zap.Uint32("memory_pages", cfg.Engine.MemoryPages),
		zap.String("log_file", cfg.Log.File))
	return nil
}

func (a *app) close() error {
	_ = a.logger.Sync()
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// newEngine creates an engine from the loaded configuration. url overrides
// the configured location when not empty.
func (a *app) newEngine(ctx context.Context, url string) (*native.Engine, error) {
	if url == "" {
		url = a.cfg.Engine.URL
	}
	opts := []native.Option{
		native.WithURL(url),
		native.WithLogger(a.logger.Named("engine")),
	}
	if a.cfg.Engine.MemoryPages > 0 {
		opts = append(opts, native.WithMemoryLimitPages(a.cfg.Engine.MemoryPages))
	}
	return native.New(ctx, opts...)
}
