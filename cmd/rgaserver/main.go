// Command rgaserver exposes one S4Vector RGA replica over HTTP and
// WebSocket, optionally relaying operations to other rgaserver processes
// through Redis pub/sub so multiple server instances can share a single
// collaboration session. Graceful shutdown is driven by
// signal.NotifyContext.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/s4vector/rga/internal/broker"
	"github.com/s4vector/rga/internal/transport"
	"github.com/s4vector/rga/replica"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	ssn := flag.Uint64("ssn", 1, "collaboration session id")
	sid := flag.Uint64("sid", 1, "this replica's site id")
	redisAddr := flag.String("redis-addr", "", "Redis address for cross-process relay; empty disables the broker")
	verbose := flag.Bool("verbose", false, "emit debug-level structured logs")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	r := replica.New(*ssn, *sid, replica.WithLogger(logger))
	srv := transport.NewServer(r, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *redisAddr != "" {
		b := broker.New(redis.NewClient(&redis.Options{Addr: *redisAddr}), sessionChannel(*ssn), logger)
		defer b.Close()

		srv.OnAccepted(func(op transport.WireOp) {
			if err := b.Publish(ctx, op); err != nil {
				logger.Warn("publishing accepted op failed", zap.Error(err))
			}
		})

		go func() {
			err := b.Subscribe(ctx, func(op transport.WireOp) {
				if err := srv.ApplyExternal(op); err != nil {
					logger.Warn("relayed op rejected", zap.Error(err))
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("broker subscription ended", zap.Error(err))
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("rgaserver listening", zap.String("addr", *addr), zap.Uint64("ssn", *ssn), zap.Uint64("sid", *sid))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func sessionChannel(ssn uint64) string {
	return "s4vector:rga:" + strconv.FormatUint(ssn, 10)
}
