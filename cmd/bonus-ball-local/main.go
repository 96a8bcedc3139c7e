// Command bonus-ball-local runs both endpoints on a local HTTP server. An
// optional .env file in the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/app"
	"github.com/tyler180/bonus-ball-backends/internal/localserver"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	a, err := app.FromEnv()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Log.Sync()

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           localserver.NewEngine(a.Router.Handle, a.Log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.Log.Error("shutdown", zap.Error(err))
	}
}
