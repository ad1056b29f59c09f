package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/config"
	"github.com/peermeet/peermeet-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "KEY VALUE   (keys: server, output, group_key, ca_cert, timeout)",
				Action:    configSet,
			},
			{
				Name:  "path",
				Usage: "Print the config file path",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if path == "" {
						path = config.DefaultConfigPath()
					}
					fmt.Println(path)
					return nil
				},
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)

	// The group key is a shared secret; never print it.
	shown := *cfg
	if shown.GroupKey != "" {
		shown.GroupKey = "***"
	}

	formatter := output.NewFormatter(output.Format(resolvedOutput(c)), c.Bool("wide"))
	return formatter.Format(os.Stdout, shown)
}

func configSet(c *cli.Context) error {
	key := c.Args().Get(0)
	value := c.Args().Get(1)
	if key == "" || value == "" {
		return fmt.Errorf("usage: config set KEY VALUE")
	}

	cfg := cliConfig(c)
	switch key {
	case "server":
		cfg.Server = value
	case "output":
		switch value {
		case "table", "json", "yaml":
			cfg.Output = value
		default:
			return fmt.Errorf("invalid output format %q", value)
		}
	case "group_key":
		cfg.GroupKey = value
	case "ca_cert":
		cfg.CACert = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		cfg.Timeout = d
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := config.Save(cfg, c.String("config")); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Set %s\n", key)
	return nil
}
