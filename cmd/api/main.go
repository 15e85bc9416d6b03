// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aicompleteme/completeme-backend/internal/ai"
	"github.com/aicompleteme/completeme-backend/internal/auth"
	"github.com/aicompleteme/completeme-backend/internal/common/database"
	"github.com/aicompleteme/completeme-backend/internal/common/utils"
	"github.com/aicompleteme/completeme-backend/internal/config"
	"github.com/aicompleteme/completeme-backend/internal/digest"
	"github.com/aicompleteme/completeme-backend/internal/invite"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("Starting AI Complete Me API")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 4. Connect to Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable (%v), continuing without cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	// 5. Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database migrations completed")

	// 6. Initialize the AI gateway client
	aiClient, err := ai.NewHTTPClient(cfg.AIGatewayURL, cfg.AIGatewayAPIKey, cfg.AIModel, cfg.AITimeout)
	if err != nil {
		log.Fatal("Failed to initialize AI client: ", err)
	}

	// 7. Wire the digest pipeline
	digestRepo := digest.NewPostgresRepository(db)

	scoringCfg := digest.DefaultScoringConfig()
	scoringCfg.ScoreFloor = cfg.ScoreFloor
	scoringCfg.ScoreCeiling = cfg.ScoreCeiling
	scorer := digest.NewScorer(scoringCfg)

	selector := digest.NewSelector(digestRepo, scorer, cfg.DigestCandidatePool)
	generator := digest.NewGenerator(aiClient)

	// Beta: gate open for everyone. REQUIRE_PREMIUM flips the policy back on.
	gate := digest.AllowAll
	if cfg.RequirePremium {
		gate = digest.PremiumGate(digestRepo)
	}

	digestService := digest.NewService(digestRepo, selector, generator, redisClient, gate, cfg.DigestTopN)
	digestHandler := digest.NewHandler(digestService)

	// 8. Wire the invite email service
	var emailSender invite.EmailSender
	switch cfg.EmailProvider {
	case "smtp":
		emailSender, err = invite.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName)
	case "sendgrid":
		emailSender, err = invite.NewSendGridEmailSender(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	default:
		emailSender = invite.NewMockEmailSender()
	}
	if err != nil {
		log.Fatal("Failed to initialize email sender: ", err)
	}

	inviteService := invite.NewService(emailSender, cfg.BaseURL)
	inviteHandler := invite.NewHandler(inviteService)

	// 9. Set up routes
	router := mux.NewRouter()
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	digest.RegisterRoutes(router, digestHandler, authMiddleware)
	invite.RegisterRoutes(router, inviteHandler, authMiddleware)

	// 10. Start the daily digest scheduler
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	digest.NewScheduler(digestService, cfg.DigestScheduleHour).Start(schedulerCtx)

	// 11. Start the HTTP server with graceful shutdown
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server stopped")
}

// runMigrations creates the tables the digest pipeline depends on. The
// UNIQUE (user_id, digest_date) constraint is the enforcement point for the
// one-digest-per-user-per-day invariant.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY,
            name TEXT,
            age INTEGER,
            personality_type TEXT,
            interests TEXT[] DEFAULT '{}',
            photos TEXT[] DEFAULT '{}',
            bio TEXT,
            occupation TEXT,
            location TEXT,
            zip_code TEXT,
            premium_active BOOLEAN DEFAULT FALSE,
            last_active TIMESTAMPTZ DEFAULT NOW(),
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS premium_matches (
            id BIGSERIAL PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES profiles(id),
            matched_user_id UUID NOT NULL REFERENCES profiles(id),
            compatibility_score DOUBLE PRECISION,
            ai_match_summary TEXT,
            match_timestamp TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE (user_id, matched_user_id)
        )`,
		`CREATE TABLE IF NOT EXISTS compatibility_digests (
            id BIGSERIAL PRIMARY KEY,
            user_id UUID NOT NULL,
            digest_date DATE NOT NULL,
            new_compatible_profiles JSONB NOT NULL DEFAULT '[]',
            profile_score_deltas JSONB NOT NULL DEFAULT '[]',
            ai_conversation_starters JSONB NOT NULL DEFAULT '[]',
            digest_content JSONB NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE (user_id, digest_date)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_premium_matches_user ON premium_matches(user_id, match_timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_last_active ON profiles(last_active DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
