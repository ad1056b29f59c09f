// Package command provides CLI command definitions for peermeet-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/config"
	"github.com/peermeet/peermeet-go/internal/cli/connection"
	"github.com/peermeet/peermeet-go/internal/infra/buildinfo"
	"github.com/peermeet/peermeet-go/internal/infra/tlsroots"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "peermeet-cli",
		Usage:   "peermeet rendezvous command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ConnectCommand(),
			PeerCommand(),
			SnapshotCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["cliConfig"] = cfg
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the CLI config file",
			EnvVars: []string{"PEERMEET_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "peermeet server address (e.g., localhost:7410)",
			EnvVars: []string{"PEERMEET_SERVER"},
		},
		&cli.StringFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Group key (shared secret)",
			EnvVars: []string{"PEERMEET_GROUP_KEY"},
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "PEM file with extra root CAs",
			EnvVars: []string{"PEERMEET_CA_CERT"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Request timeout",
			EnvVars: []string{"PEERMEET_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// cliConfig retrieves the loaded config from app metadata.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata["cliConfig"].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// resolvedServer returns the server from the flag, falling back to the
// config file.
func resolvedServer(c *cli.Context) string {
	if s := c.String("server"); s != "" {
		return s
	}
	return cliConfig(c).Server
}

// resolvedOutput returns the output format from the flag, falling back
// to the config file.
func resolvedOutput(c *cli.Context) string {
	if o := c.String("output"); o != "" {
		return o
	}
	return cliConfig(c).Output
}

// resolvedGroupKey returns the group key from the flag, falling back
// to the config file. The key never has a built-in default.
func resolvedGroupKey(c *cli.Context) (string, error) {
	if g := c.String("group"); g != "" {
		return g, nil
	}
	if g := cliConfig(c).GroupKey; g != "" {
		return g, nil
	}
	return "", fmt.Errorf("group key required (use --group or PEERMEET_GROUP_KEY)")
}

// newClient builds the API client from flags and config.
func newClient(c *cli.Context) (*connection.Client, error) {
	cfg := cliConfig(c)

	opts := []connection.Option{}

	timeout := cfg.Timeout
	if d := c.Duration("timeout"); d > 0 {
		timeout = d
	}
	if timeout > 0 {
		opts = append(opts, connection.WithTimeout(timeout))
	}

	caCert := c.String("ca-cert")
	if caCert == "" {
		caCert = cfg.CACert
	}
	if caCert != "" {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(caCert); err != nil {
			return nil, err
		}
		opts = append(opts, connection.WithTLSConfig(pool.ClientTLSConfig()))
	}

	return connection.NewClient(resolvedServer(c), opts...), nil
}

// requestContext returns a context bounded by the resolved timeout.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := cliConfig(c).Timeout
	if d := c.Duration("timeout"); d > 0 {
		timeout = d
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
