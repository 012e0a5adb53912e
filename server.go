package main

import (
	"fmt"
	"slices"

	"fedinstance/config"
	"fedinstance/db"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var knownNetworks = []string{db.NetworkDFRN, db.NetworkActivityPub, db.NetworkDiaspora, db.NetworkOStatus}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:      "server",
		Usage:     "Record a known remote server",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "network",
				Value: db.NetworkActivityPub,
				Usage: "dfrn, apub, dspr or stat",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "mark the server unreachable",
			},
			&cli.BoolFlag{
				Name:  "blocked",
				Usage: "block the server",
			},
		},
		Action: runServer,
	}
}

func runServer(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one server URL, got %d", c.NArg())
	}
	u, err := config.ParseBaseURL(c.Args().First())
	if err != nil {
		return err
	}
	network := c.String("network")
	if !slices.Contains(knownNetworks, network) {
		return fmt.Errorf("unknown network %q", network)
	}

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	servers := db.NewGServerModel(rt.db)
	server := &db.GServer{
		URL:     u.String(),
		Network: network,
		Failed:  c.Bool("failed"),
		Blocked: c.Bool("blocked"),
	}
	if err := servers.Save(c.Context, server); err != nil {
		return err
	}
	rt.logger.Info("server saved", zap.String("url", server.URL), zap.String("network", network), zap.Bool("blocked", server.Blocked))

	federated, err := servers.CountFederated(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%d federated servers known\n", federated)
	return err
}
