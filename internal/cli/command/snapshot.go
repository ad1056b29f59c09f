package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/connection"
	"github.com/peermeet/peermeet-go/internal/cli/output"
)

// SnapshotCommand returns the snapshot subcommand group.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Manage server snapshots",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Write a snapshot of the registry now",
				Action: snapshotCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List snapshot files, oldest first",
				Action:  snapshotList,
			},
		},
	}
}

func snapshotCreate(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	info, err := client.CreateSnapshot(ctx)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.Format(resolvedOutput(c)), c.Bool("wide"))
	return formatter.Format(os.Stdout, info)
}

func snapshotList(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	snapshots, err := client.ListSnapshots(ctx)
	if err != nil {
		return err
	}

	format := output.Format(resolvedOutput(c))
	if format != output.FormatTable {
		formatter := output.NewFormatter(format, c.Bool("wide"))
		return formatter.Format(os.Stdout, snapshots)
	}

	return printSnapshots(snapshots)
}

func printSnapshots(snapshots []connection.SnapshotInfo) error {
	table := &output.Table{Headers: []string{"ID", "GROUPS", "CREATED", "SIZE"}}
	for _, s := range snapshots {
		table.AddRow(
			s.ID,
			fmt.Sprintf("%d", s.GroupCount),
			time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Size),
		)
	}

	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d snapshots\n", len(snapshots))
	return nil
}
