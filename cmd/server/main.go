package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"velvet_back_end/internal/config"
	"velvet_back_end/internal/database"
	"velvet_back_end/internal/handlers"
	"velvet_back_end/internal/monitor"
	"velvet_back_end/internal/routes"
	"velvet_back_end/internal/services"
	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

func main() {
	cfg := config.Load()

	utils.InitJWT(cfg.JWTSecret, cfg.TokenExpiry)
	handlers.Init(cfg)

	database.Connect(cfg)
	defer database.CloseScylla()

	services.InitPhotoStore(cfg.MinIOBucket)

	if cfg.SeedOnStart {
		database.Seed()
	}

	initOAuthProviders(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Moniteur de stock : premier scan immédiat puis un par intervalle.
	lowStock := monitor.New(monitor.ScyllaLowStock, utils.NewMailer(cfg), cfg.LowStockInterval)
	go lowStock.Run(ctx)

	r := gin.Default()
	routes.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("🚀 Serveur Velvet lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Erreur serveur: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔌 Arrêt demandé, fermeture en cours...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
}

func initOAuthProviders(cfg *config.Config) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Println("⚠️ OAuth Google non configuré, routes /auth désactivées côté provider")
		return
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	}
	gothic.Store = store

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.PublicBaseURL+"/auth/google/callback",
			"email", "profile",
		),
	)
	log.Println("✅ OAuth Google initialisé")
}
