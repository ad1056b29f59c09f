package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/cli/connection"
	"github.com/peermeet/peermeet-go/internal/cli/output"
)

// PeerCommand returns the peer subcommand group.
func PeerCommand() *cli.Command {
	return &cli.Command{
		Name:  "peer",
		Usage: "Register, discover, and maintain peers in a group",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a peer in the group",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Peer display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "endpoint",
						Aliases: []string{"e"},
						Usage:   "Endpoint other peers should contact",
					},
					&cli.DurationFlag{
						Name:    "ttl",
						Aliases: []string{"t"},
						Usage:   "Registration TTL (e.g., 5m, 300s)",
					},
					&cli.StringSliceFlag{
						Name:    "meta",
						Aliases: []string{"m"},
						Usage:   "Metadata as KEY=VALUE pairs",
					},
					&cli.StringFlag{
						Name:  "peer-id",
						Usage: "Explicit peer ID (derived from name when omitted)",
					},
				},
				Action: peerRegister,
			},
			{
				Name:    "list",
				Aliases: []string{"ls", "discover"},
				Usage:   "List the live peers of the group",
				Action:  peerList,
			},
			{
				Name:      "heartbeat",
				Aliases:   []string{"hb"},
				Usage:     "Refresh a peer's registration",
				ArgsUsage: "PEER_ID",
				Action:    peerHeartbeat,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm", "unsubscribe"},
				Usage:     "Remove a peer from the group",
				ArgsUsage: "PEER_ID",
				Action:    peerRemove,
			},
			{
				Name:   "watch",
				Usage:  "Stream membership changes of the group",
				Action: peerWatch,
			},
		},
	}
}

func peerRegister(c *cli.Context) error {
	groupKey, err := resolvedGroupKey(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	req := &connection.RegisterRequest{
		Name:     c.String("name"),
		Endpoint: c.String("endpoint"),
		PeerID:   c.String("peer-id"),
	}
	if ttl := c.Duration("ttl"); ttl > 0 {
		seconds := int64(ttl.Seconds())
		req.TTLSeconds = &seconds
	}
	if metaFlags := c.StringSlice("meta"); len(metaFlags) > 0 {
		req.Metadata = make(map[string]string, len(metaFlags))
		for _, pair := range metaFlags {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid --meta %q, want KEY=VALUE", pair)
			}
			req.Metadata[key] = value
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := client.Register(ctx, groupKey, req)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.Format(resolvedOutput(c)), c.Bool("wide"))
	return formatter.Format(os.Stdout, result)
}

func peerList(c *cli.Context) error {
	groupKey, err := resolvedGroupKey(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	peers, err := client.Discover(ctx, groupKey)
	if err != nil {
		return err
	}

	return printPeers(c, peers)
}

// printPeers renders a peer list in the selected format. The table
// view uses purpose-built columns instead of the reflective default.
func printPeers(c *cli.Context, peers []connection.Peer) error {
	format := output.Format(resolvedOutput(c))
	if format != output.FormatTable {
		formatter := output.NewFormatter(format, c.Bool("wide"))
		return formatter.Format(os.Stdout, peers)
	}

	table := &output.Table{Headers: []string{"PEER ID", "NAME", "SOURCE", "AGE"}}
	if c.Bool("wide") {
		table.Headers = []string{"PEER ID", "NAME", "ENDPOINT", "SOURCE", "METADATA", "AGE"}
	}

	for _, p := range peers {
		age := (time.Duration(p.Age) * time.Second).String()
		if c.Bool("wide") {
			table.AddRow(p.PeerID, p.Name, dash(p.Endpoint), dash(p.SourceAddress), metaString(p.Metadata), age)
		} else {
			table.AddRow(p.PeerID, p.Name, dash(p.SourceAddress), age)
		}
	}

	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d peers\n", len(peers))
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func metaString(meta map[string]string) string {
	if len(meta) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(meta))
	for k, v := range meta {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func peerHeartbeat(c *cli.Context) error {
	peerID := c.Args().First()
	if peerID == "" {
		return fmt.Errorf("peer ID required")
	}
	groupKey, err := resolvedGroupKey(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Heartbeat(ctx, groupKey, peerID); err != nil {
		return err
	}

	fmt.Printf("Heartbeat sent for %s\n", peerID)
	return nil
}

func peerRemove(c *cli.Context) error {
	peerID := c.Args().First()
	if peerID == "" {
		return fmt.Errorf("peer ID required")
	}
	groupKey, err := resolvedGroupKey(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := client.Unsubscribe(ctx, groupKey, peerID); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", peerID)
	return nil
}

func peerWatch(c *cli.Context) error {
	groupKey, err := resolvedGroupKey(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	// Watch runs until interrupted; the request timeout does not apply.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	format := output.Format(resolvedOutput(c))

	var spinner *output.Spinner
	if format == output.FormatTable {
		spinner = output.NewSpinner(os.Stderr, "connecting to "+client.BaseURL())
		spinner.Start()
	}

	updates, err := client.Watch(ctx, groupKey)
	if spinner != nil {
		if err != nil {
			spinner.Fail("connection failed")
		} else {
			spinner.Success("subscribed, waiting for updates")
		}
	}
	if err != nil {
		return err
	}
	for update := range updates {
		if format == output.FormatTable {
			fmt.Printf("--- %s (%d peers)\n", time.Now().Format("15:04:05"), len(update.Peers))
			if err := printPeers(c, update.Peers); err != nil {
				return err
			}
			continue
		}

		formatter := output.NewFormatter(format, c.Bool("wide"))
		if err := formatter.Format(os.Stdout, update); err != nil {
			return err
		}
	}

	return nil
}
