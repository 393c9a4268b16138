package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/genbitmap"
	"github.com/urfave/cli"
)

// Version is set at build time.
var Version = "dev"

// env carries what every command needs.
type env struct {
	ctx    context.Context
	logger *genbitmap.Logger
}

func newApp(ctx context.Context) *cli.App {
	e := &env{ctx: ctx, logger: genbitmap.NoopLogger()}

	app := cli.NewApp()
	app.Name = "bitmapctl"
	app.Version = Version
	app.Usage = "inspect and edit bitmap snapshots"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "store, s",
			Usage:  "blob store `URL`: file://dir, s3://bucket/prefix or minio://endpoint/bucket/prefix",
			EnvVar: "BITMAPCTL_STORE",
			Value:  "file://.",
		},
		cli.StringFlag{
			Name:   "log-level, l",
			Usage:  "log level, debug|info|warn|error|off",
			EnvVar: "LOG_LEVEL",
			Value:  "off",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "log format, text|json",
			Value: "text",
		},
	}
	app.Before = func(c *cli.Context) error {
		logger, err := newLogger(c)
		if err != nil {
			return err
		}
		e.logger = logger
		return nil
	}
	app.Commands = []cli.Command{
		cmdCreate(e),
		cmdInspect(e),
		cmdGet(e),
		cmdSet(e),
		cmdConvert(e),
		cmdList(e),
	}
	return app
}

func newLogger(c *cli.Context) (*genbitmap.Logger, error) {
	level := strings.ToLower(c.GlobalString("log-level"))
	if level == "off" || level == "" {
		return genbitmap.NoopLogger(), nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch c.GlobalString("log-format") {
	case "json":
		return genbitmap.NewLogger(slog.NewJSONHandler(c.App.ErrWriter, opts)), nil
	case "text", "":
		return genbitmap.NewLogger(slog.NewTextHandler(c.App.ErrWriter, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.GlobalString("log-format"))
	}
}
