package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wepoker/tablesync/pkg/client"
	"github.com/wepoker/tablesync/pkg/logging"
	"github.com/wepoker/tablesync/pkg/ui"
)

func main() {
	var (
		datadir   = flag.String("datadir", defaultDataDir(), "data directory for config and logs")
		serverURL = flag.String("serverurl", "", "REST base URL for the polling transport")
		pushAddr  = flag.String("pushaddr", "", "host:port of the push endpoint")
		transport = flag.String("transport", "", "transport strategy: poll or push")
		tableID   = flag.Int64("tableid", 0, "table to join")
		playerID  = flag.String("playerid", "", "player id")
		nickname  = flag.String("nickname", "", "display name")
		buyIn     = flag.Int64("buyin", 0, "buy-in in minor currency units")
		debug     = flag.String("debug", "", "log level, e.g. info or debug,TRAN=trace")
	)
	flag.Parse()

	cfg, err := client.LoadConfig(*datadir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file.
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *pushAddr != "" {
		cfg.PushAddr = *pushAddr
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *tableID != 0 {
		cfg.TableID = *tableID
	}
	if *playerID != "" {
		cfg.PlayerID = *playerID
	}
	if *nickname != "" {
		cfg.Nickname = *nickname
	}
	if *buyIn != 0 {
		cfg.BuyIn = *buyIn
	}
	if *debug != "" {
		cfg.Debug = *debug
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:     filepath.Join(cfg.DataDir, "logs", "tablecli.log"),
		DebugLevel:  cfg.Debug,
		MaxLogFiles: 10,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()
	log := logBackend.Logger("MAIN")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := client.NewTableClient(ctx, cfg, logBackend.Logger("CLNT"))
	if err != nil {
		log.Errorf("Failed to create table client: %v", err)
		os.Exit(1)
	}
	defer c.Leave()

	log.Infof("Joining table %d as %s (%s transport)",
		cfg.TableID, cfg.Nickname, cfg.Transport)
	if err := c.Join(ctx); err != nil {
		log.Errorf("Failed to join table: %v", err)
		os.Exit(1)
	}

	if err := ui.Run(ctx, c, logBackend.Logger("UI")); err != nil {
		log.Errorf("UI error: %v", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".tablecli")
}
