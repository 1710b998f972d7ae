package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cakewalk/internal/config"
	httpapi "cakewalk/internal/http"
	"cakewalk/internal/repository"
	"cakewalk/internal/schedule"
	"cakewalk/internal/service"
	"cakewalk/internal/track"

	_ "cakewalk/docs"
)

func main() {
	config.MustInit()
	cfg := config.Load()

	sched, err := schedule.New(schedule.Config{
		Timezone:     cfg.Timezone,
		OpenHour:     cfg.OpenHour,
		CloseHour:    cfg.CloseHour,
		SlotInterval: cfg.SlotInterval,
		Buffer:       cfg.Buffer,
	})
	if err != nil {
		slog.Error("scheduler init", "error", err)
		os.Exit(1)
	}

	store := repository.NewMemoryStore()
	ordersRepo := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)

	tracker := track.NewTracker(sched.Location())
	checkoutSvc := service.NewCheckoutService(ordersRepo, store, sched, tx)
	ordersSvc := service.NewOrderService(ordersRepo, tracker, tx)

	srv := httpapi.NewServer(sched, checkoutSvc, ordersSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := track.NewMonitor(tracker, ordersRepo, cfg.MonitorTick)
	monitor.Start(ctx)
	defer monitor.Stop()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
