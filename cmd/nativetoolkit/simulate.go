package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/toqueteos/webbrowser"
	"golang.org/x/sync/errgroup"

	"github.com/arko-chat/nativetoolkit/internal/bridge"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
	"github.com/arko-chat/nativetoolkit/internal/models"
	"github.com/arko-chat/nativetoolkit/internal/simulator"
	"github.com/arko-chat/nativetoolkit/internal/webview"
)

func runSimulate(ctx context.Context, env *environment, args []string) error {
	fs := newFlags("simulate")
	addr := fs.String("addr", env.cfg.SimulatorAddr, "listen address")
	window := fs.Bool("window", false, "open the simulator in a desktop window")
	browser := fs.Bool("browser", false, "open the pairing link in the default browser")
	qrPath := fs.String("qr", "", "write the pairing QR code to this PNG file")
	qrSize := fs.Int("qr-size", 256, "QR code size in pixels")
	demo := fs.Bool("demo", false, "walk through one dialog of every kind")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mgr := dialogs.Editor()
	sim := simulator.New(mgr, simulator.Options{
		Logger:  env.logger,
		HashKey: env.cfg.HashKey(),
	})
	bridge.Register(models.PlatformEditor, sim)
	defer bridge.Unregister(models.PlatformEditor)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	bound := make(chan net.Addr, 1)
	g.Go(func() error {
		return sim.Serve(gctx, *addr, func(a net.Addr) { bound <- a })
	})

	var base string
	select {
	case a := <-bound:
		base = "http://" + a.String() + "/"
	case <-gctx.Done():
		return quiet(g.Wait())
	}

	link, err := sim.PairingURL(base)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, link)

	if *qrPath != "" {
		png, err := sim.PairingQR(base, *qrSize)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*qrPath, png, 0o644); err != nil {
			return fmt.Errorf("write QR code: %w", err)
		}
		env.logger.Info("pairing QR code written", "path", *qrPath)
	}

	if *browser {
		if err := webbrowser.Open(link); err != nil {
			env.logger.Warn("could not open browser", "err", err)
		}
	}

	var host *webview.Host
	if *window {
		host = webview.NewHost(dispatcher.Default(), env.logger)
	}

	if *demo {
		tour := newTour(mgr, env.logger)
		if host != nil {
			tour.onStep = host.SetTitle
		}
		// the first dialog waits for a page, since the simulator replays
		// pending requests to late joiners
		if err := tour.start(); err != nil {
			return err
		}
	}

	if host == nil {
		g.Go(func() error {
			return dispatcher.Default().Run(gctx, 0)
		})
		return quiet(g.Wait())
	}

	hostErr := host.Run(gctx, link)
	// closing the window ends the server too
	cancel()
	return errors.Join(hostErr, quiet(g.Wait()))
}

func quiet(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
