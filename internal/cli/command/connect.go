package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/config"
)

// ConnectCommand returns the connect command. It verifies the server
// is reachable and saves it as the default.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Verify a server and save it as the default",
		ArgsUsage: "[SERVER]",
		Action:    connectAction,
	}
}

func connectAction(c *cli.Context) error {
	server := c.Args().First()
	if server == "" {
		server = resolvedServer(c)
	}

	// Health-check through the flags so --ca-cert applies.
	if err := c.Set("server", server); err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", client.BaseURL(), err)
	}

	cfg := cliConfig(c)
	cfg.Server = client.BaseURL()
	if caCert := c.String("ca-cert"); caCert != "" {
		cfg.CACert = caCert
	}
	if err := config.Save(cfg, c.String("config")); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Connected to %s\n", client.BaseURL())
	return nil
}
