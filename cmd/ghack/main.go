package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghack/client/internal/client"
	"github.com/ghack/client/internal/config"
	"github.com/ghack/client/internal/data"
	"github.com/ghack/client/internal/game"
	gamenet "github.com/ghack/client/internal/net"
	"github.com/ghack/client/internal/replay"
	"github.com/ghack/client/internal/script"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/client.toml"
	if p := os.Getenv("GHACK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Transport
	var conn *gamenet.Conn
	switch cfg.Network.Transport {
	case "websocket":
		conn, err = gamenet.DialWS(cfg.Network.Server, cfg.Network.DialTimeout, log)
	case "tcp", "":
		conn, err = gamenet.Dial(cfg.Network.Server, cfg.Network.DialTimeout, log)
	default:
		return fmt.Errorf("unknown transport %q", cfg.Network.Transport)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Replay.Enabled {
		journal, err := replay.Open(cfg.Replay.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()
		conn.AttachJournal(journal)
		log.Info("recording session", zap.String("path", cfg.Replay.Path))
	}

	// State-key table
	keys := data.BuiltinStateKeys()
	if cfg.Client.StateKeys != "" {
		keys, err = data.LoadStateKeys(cfg.Client.StateKeys)
		if err != nil {
			return fmt.Errorf("load state keys: %w", err)
		}
		log.Info("loaded state keys", zap.Int("count", keys.Count()))
	}

	store := game.NewStore(keys, log)
	intent := &game.Intent{}
	cli := client.New(conn, store, intent, cfg.Client.Name, log)

	if cfg.Script.Enabled {
		engine, err := script.NewEngine(cfg.Script.Dir, log)
		if err != nil {
			return fmt.Errorf("script engine: %w", err)
		}
		defer engine.Close()
		cli.SetHooks(engine)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop() // release the disconnect goroutine on normal exit
		return cli.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		cli.Disconnect("client shutting down")
		return nil
	})
	return quitErr(g.Wait())
}

// quitErr maps a cancelled context to a clean exit: Ctrl+C is a normal way
// to leave the game, not a failure.
func quitErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
