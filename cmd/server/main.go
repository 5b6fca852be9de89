package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/ai"
	"github.com/iliyamo/discipline-tracker/internal/config"
	"github.com/iliyamo/discipline-tracker/internal/database"
	"github.com/iliyamo/discipline-tracker/internal/handler"
	appmw "github.com/iliyamo/discipline-tracker/internal/middleware"
	"github.com/iliyamo/discipline-tracker/internal/queue"
	"github.com/iliyamo/discipline-tracker/internal/repository"
	"github.com/iliyamo/discipline-tracker/internal/router"
	"github.com/iliyamo/discipline-tracker/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// A nil Redis client degrades rate limiting and caching to no-ops.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	doctrines := repository.NewDoctrineRepo(db)
	checkins := repository.NewCheckinRepo(db)
	decisions := repository.NewDecisionRepo(db)
	logs := repository.NewDisciplineLogRepo(db)
	reviews := repository.NewWeeklyReviewRepo(db)

	gateway := ai.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	decisionSvc := service.NewDecisionService(doctrines, checkins, decisions, gateway)
	reviewSvc := service.NewReviewService(doctrines, checkins, decisions, logs, reviews, gateway, cfg.ReviewStrategy)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret,
		appmw.NewTokenBucket(config.LoadLoginRateLimit(), rdb))
	router.RegisterV1(e, cfg.JWTSecret,
		handler.NewDoctrineHandler(doctrines),
		handler.NewCheckinHandler(checkins),
		handler.NewDecisionHandler(decisions, decisionSvc),
		handler.NewDisciplineLogHandler(logs, decisions),
		handler.NewWeeklyReviewHandler(reviews, reviewSvc),
		appmw.NewTokenBucket(config.LoadDecisionRateLimit(), rdb),
		appmw.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Audit-trail consumer; reconnects on its own and never stops the server.
	go func() {
		if err := queue.StartDisciplineConsumer(); err != nil {
			log.Printf("discipline consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
