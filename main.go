package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/nimlothbackend/config"
	"github.com/camden-git/nimlothbackend/database"
	"github.com/camden-git/nimlothbackend/handlers"
	"github.com/camden-git/nimlothbackend/repository"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	log.Printf("Using database: %s", cfg.DatabasePath)

	personRepo := repository.NewPersonRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	resetRepo := repository.NewGormPasswordResetRepository(db)

	personHandler := handlers.NewPersonHandler(personRepo, userRepo)
	authHandler := handlers.NewAuthHandler(userRepo, personRepo, resetRepo, cfg)

	jwtSecret := []byte(cfg.JWTSecret)
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(userRepo, jwtSecret, h)
	}

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", personHandler.ListPersons)
			r.Method(http.MethodPost, "/", requireAuth(personHandler.CreatePerson))
			r.Method(http.MethodGet, "/me", requireAuth(personHandler.GetCurrentPerson))
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Patch("/", personHandler.PatchPerson)
				r.Delete("/", personHandler.DeletePerson)
				r.Get("/children", personHandler.ListChildren)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/login/refresh", authHandler.Refresh)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Method(http.MethodGet, "/user", requireAuth(authHandler.CurrentUser))
			r.Method(http.MethodPost, "/change-password", requireAuth(authHandler.ChangePassword))
			r.Post("/password-reset", authHandler.RequestPasswordReset)
			r.Post("/password-reset-confirm", authHandler.ConfirmPasswordReset)
		})
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
