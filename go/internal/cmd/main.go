package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/mcdev12/auctionhouse/go/internal/protocol"
	"github.com/mcdev12/auctionhouse/go/internal/registry"
	"github.com/mcdev12/auctionhouse/go/internal/server"
	"github.com/mcdev12/auctionhouse/go/internal/sweeper"
)

const (
	exitUsage  = 8
	exitListen = 11
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	setupLogging()

	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := parseArgs(os.Args[1:], &config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// Wire up dependency injection chain, leaves first.
	catalogue := auction.NewCatalogue(clock)
	reg := registry.NewRegistry()
	handler := protocol.NewHandler(catalogue, reg)
	sw := sweeper.NewSweeper(catalogue, reg, clock, config.sweepInterval())
	supervisor := server.NewSupervisor(handler, reg, config.MaxConnections)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.ListenPort))
	if err != nil {
		fmt.Fprintln(os.Stderr, "auctionhouse: socket can't be listened on")
		os.Exit(exitListen)
	}
	// The bound port goes to stderr on its own line so scripts can pick up an
	// ephemeral port.
	fmt.Fprintf(os.Stderr, "%d\n", ln.Addr().(*net.TCPAddr).Port)

	watchStats(catalogue, reg)
	go sw.Run(ctx)

	if config.WSAddr != "" {
		ws := server.NewWSServer(supervisor)
		httpServer := &http.Server{Addr: config.WSAddr, Handler: ws.Handler()}
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
		go func() {
			log.Info().Str("addr", config.WSAddr).Msg("websocket listener started")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("websocket listener failed")
			}
		}()
	}

	log.Info().
		Int("port", ln.Addr().(*net.TCPAddr).Port).
		Int("max_connections", config.MaxConnections).
		Msg("auction server started")

	if err := supervisor.Serve(ctx, ln); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("auction server stopped")
}

func setupLogging() {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
