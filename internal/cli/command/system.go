package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Inspect the server",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show registry and subscription counts",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check the server's liveness endpoint",
				Action: systemHealth,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.Format(resolvedOutput(c)), c.Bool("wide"))
	return formatter.Format(os.Stdout, status)
}

func systemHealth(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		return err
	}

	fmt.Printf("%s is healthy\n", client.BaseURL())
	return nil
}
