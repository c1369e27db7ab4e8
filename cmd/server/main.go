package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"topupin-be/internal/catalog"
	"topupin-be/internal/config"
	"topupin-be/internal/db"
	"topupin-be/internal/ledger"
	"topupin-be/internal/logger"
	"topupin-be/internal/metrics"
	appmw "topupin-be/internal/middleware"
	"topupin-be/internal/order"
	"topupin-be/internal/promo"
	"topupin-be/internal/user"
	"topupin-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const sweepInterval = 5 * time.Minute

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	catalogRepo := catalog.NewRepository(database)
	catalogHandler := catalog.NewHandler(catalogRepo)

	promoRepo := promo.NewRepository(database)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	store := order.NewStore()
	orderRepo := order.NewRepository(database, ledger.NewRecorder(database))
	orderSvc := order.NewService(store, orderRepo, catalogRepo, promoRepo, cfg.PendingWindow)
	lock := order.NewLock(cfg.LockSecret, cfg.PendingWindow)
	orderHandler := order.NewHandler(orderSvc, lock)

	stopSweeper := order.StartHousekeeping(store, sweepInterval)
	defer stopSweeper()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(appmw.AuthMiddleware)
	r.Use(appmw.RateLimitMiddleware)

	r.Method(http.MethodGet, "/", orderHandler.Landing(http.HandlerFunc(landing)))
	r.Get("/invoice/{code}", orderHandler.Invoice)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Get("/items", catalogHandler.ListItems)
		r.Get("/payment-methods", catalogHandler.ListPaymentMethods)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Place)
			r.Get("/{code}", orderHandler.Invoice)
			r.Post("/{code}/confirm", orderHandler.Confirm)
			r.Post("/{code}/cancel", orderHandler.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmw.RequireAdmin)
			r.Get("/orders/pending", orderHandler.ListPending)
			r.Post("/orders/{code}/proof", orderHandler.AttachProof)
			r.Post("/orders/{code}/complete", orderHandler.Complete)
			r.Get("/stats", stats)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("🚀 server running", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Pending orders live in memory only, so a restart drops them; all we
	// can do is stop taking new work and let in-flight requests finish.
	log.Info("shutting down", zap.Int("pending_orders_lost", store.Len()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func landing(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]any{
		"service": "topupin",
		"status":  "ok",
	}, http.StatusOK)
}

func stats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, metrics.Snapshot(), http.StatusOK)
}
