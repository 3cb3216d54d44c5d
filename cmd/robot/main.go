// Command robot runs one BFT consensus participant: it loads a federation
// config, builds the encrypted overlay and persistent stores, and drives
// the external HotStuff service until interrupted.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/drep-project/robot/internal/config"
	"github.com/drep-project/robot/internal/hotstuff"
	hsfake "github.com/drep-project/robot/internal/hotstuff/fake"
	"github.com/drep-project/robot/internal/logging"
	"github.com/drep-project/robot/internal/node"
)

func main() {
	app := &cli.App{
		Name:  "robot",
		Usage: "run a HotStuff consensus node driving the robot demo application",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true, Usage: "path to the federation config JSON file"},
			&cli.IntFlag{Name: "node-index", Aliases: []string{"n"}, Required: true, Usage: "0-based index of this node within network.nodes"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log := logging.New("cmd/robot")
		log.WithError(err).Error("fatal")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := logging.New("cmd/robot")

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	nodeIndex := c.Int("node-index")
	if err := cfg.Validate(nodeIndex); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The HotStuff protocol implementation is an external collaborator out
	// of scope for this repository (see SPEC_FULL.md §4.12); the fake
	// service lets the composition root run standalone.
	var consensus hotstuff.Service = hsfake.New()

	n, err := node.Build(ctx, cfg, nodeIndex, consensus, log.WithField("node_index", nodeIndex))
	if err != nil {
		return err
	}

	log.WithField("node_index", nodeIndex).Info("node starting")
	err = n.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("node shut down cleanly")
	return nil
}
