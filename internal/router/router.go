package router

import (
	"cerebmod/internal/db"
	"cerebmod/internal/handlers"
	"cerebmod/internal/services"
	"cerebmod/internal/utils"

	"github.com/gin-gonic/gin"
)

// Deps is everything the handlers need, built once at startup.
type Deps struct {
	DB    *db.Provider
	LLM   *services.LLMService
	Cache *utils.Cache
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB)
	postHandler := handlers.NewPostHandler(d.DB)
	moderationHandler := handlers.NewModerationHandler(d.DB)
	insightHandler := handlers.NewInsightHandler(d.DB, d.Cache)
	aiHandler := handlers.NewAIHandler(d.DB, d.LLM)

	r.GET("/healthz", healthHandler.Check)

	api := r.Group("/api")
	{
		// Posts
		api.POST("/store_post", postHandler.Store)
		api.GET("/posts/:id", postHandler.Get)

		// Moderation cases and replies
		api.POST("/store_moderation_case", moderationHandler.StoreCase)
		api.GET("/fetch_mod_cases", moderationHandler.ListCases)
		api.POST("/store_mod_reply", moderationHandler.StoreReply)
		api.GET("/fetch_mod_replies", moderationHandler.ListReplies)

		// Subreddit insights
		api.POST("/store_subreddit_insight", insightHandler.Store)
		api.GET("/fetch_subreddit_insight_supabase", insightHandler.List)
		api.GET("/fetch_subreddit_insight", insightHandler.Summary)

		// AI assistance
		api.POST("/generate_mod_reply", aiHandler.GenerateModReply)
		api.POST("/auto_moderate", aiHandler.AutoModerate)
		api.POST("/explain_post", aiHandler.ExplainPost)
	}
}
