package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stockpos/stockpos/config"
	"github.com/stockpos/stockpos/internal/adminapi"
	"github.com/stockpos/stockpos/internal/app"
	"github.com/stockpos/stockpos/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "display help")
	conffile = flag.String("c", "/etc/stockpos.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(webserver.Listen)

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.S().Infof("received signal %s, shutting down", sig)
		case <-ctx.Done():
			return ctx.Err()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return webserver.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Errorf("server exit: %v", err)
	}
}
