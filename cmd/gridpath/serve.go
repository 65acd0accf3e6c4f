package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/server"
	"github.com/lixenwraith/gridpath/store"
)

func runServe(e *env, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", e.cfg.Server.BindAddress, "Listen address")
	record := fs.Bool("record", true, "Record runs in the store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e.cfg.Server.BindAddress = *addr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec server.Recorder
	if *record {
		st, err := e.openStore(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				e.log.Error("store close", zap.Error(err))
			}
		}()
		rec = st
	}

	cache := navigation.NewRouteCache(e.cfg.Search.CacheSize)
	srv := server.NewServer(e.cfg.Server, cache, rec, e.log, e.searchOptions()...)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	hits, misses := cache.Stats()
	e.log.Info("server stopped", zap.Int("cache_hits", hits), zap.Int("cache_misses", misses))
	return nil
}

var _ server.Recorder = (*store.Store)(nil)
