package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"resto-pos/config"
	"resto-pos/metrics"
	"resto-pos/models"
	"resto-pos/realtime"
	"resto-pos/services"
	"resto-pos/store"
	"resto-pos/views"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := metrics.NewRegistry()
	orderStore := store.NewOrderStore()
	orderSvc := services.NewOrderService(cfg.APIBaseURL, cfg.RequestTimeout)

	token := ""
	if cfg.StaffEmail != "" && cfg.StaffPassword != "" {
		authSvc := services.NewAuthService(cfg.APIBaseURL, cfg.RequestTimeout)
		tok, expiry, err := authSvc.Login(ctx, cfg.StaffEmail, cfg.StaffPassword)
		if err != nil {
			log.Fatalf("Staff login failed: %v", err)
		}
		orderSvc.SetToken(tok)
		token = tok
		log.Printf("Logged in as %s, token valid until %s", cfg.StaffEmail, expiry.Format("15:04:05"))
	}

	syncSvc := services.NewSyncService(orderSvc, orderStore, reg, cfg.PollInterval)
	syncSvc.Start(ctx)

	channel := realtime.NewChannelClient(cfg.EventsURL, token, syncSvc.HandleEvent)
	channel.SetBackoff(cfg.ReconnectMin, cfg.ReconnectMax)
	channel.OnStateChange(func(connected bool) {
		if connected {
			log.Println("Live updates resumed")
		} else {
			log.Println("Live updates paused, falling back to polling")
		}
	})
	channel.OnReconnect(reg.Reconnects.Inc)
	channel.Connect(ctx)

	dashboard := views.NewDashboard(orderStore, syncSvc, func(orders []models.Order) {
		pending := 0
		for _, o := range orders {
			if o.Status == models.StatusPending {
				pending++
			}
		}
		log.Printf("Dashboard: %d orders (%d pending)", len(orders), pending)
	})
	defer dashboard.Close()

	go func() {
		addr := ":" + cfg.MetricsPort
		log.Printf("Metrics on http://localhost%s/metrics", addr)
		if err := http.ListenAndServe(addr, reg.Handler()); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	log.Printf("POS client started against %s", cfg.APIBaseURL)
	<-ctx.Done()

	channel.Close()
	<-syncSvc.Done()
	log.Println("POS client stopped")
}
