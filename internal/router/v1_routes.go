package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/handler"
	"github.com/iliyamo/discipline-tracker/internal/middleware"
)

// RegisterV1 wires the protected domain endpoints.  Every route runs
// the JWT middleware; decision creation additionally runs the per-user
// limiter, and the two read-mostly GETs (doctrine, streak) go through
// the per-user Redis response cache.
func RegisterV1(
	e *echo.Echo,
	jwtSecret string,
	doctrine *handler.DoctrineHandler,
	checkin *handler.CheckinHandler,
	decision *handler.DecisionHandler,
	logs *handler.DisciplineLogHandler,
	review *handler.WeeklyReviewHandler,
	decisionLimiter echo.MiddlewareFunc,
	cache echo.MiddlewareFunc,
) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.GET("/doctrine", doctrine.Show, cache)
	g.PUT("/doctrine", doctrine.Upsert)

	g.GET("/checkin/today", checkin.Today)
	g.POST("/checkin", checkin.Store)
	g.GET("/checkins", checkin.Index)

	g.POST("/decisions", decision.Store, decisionLimiter)
	g.GET("/decisions", decision.Index)
	g.GET("/decisions/:id", decision.Show)
	g.PATCH("/decisions/:id/outcome", decision.UpdateOutcome)

	g.POST("/discipline-log", logs.Store)
	g.GET("/discipline-log", logs.Index)
	g.GET("/discipline-log/streak", logs.Streak, cache)

	g.POST("/weekly-review/generate", review.Generate)
	g.GET("/weekly-reviews", review.Index)
	g.GET("/weekly-reviews/:id", review.Show)
}
