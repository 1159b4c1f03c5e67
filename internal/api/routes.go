package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nutrify/diet-tracker/internal/service"
)

// Services are the dependencies of the HTTP handlers.
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Advisor  service.AdvisorService
	DietPlan service.DietPlanService
	FoodLog  service.FoodLogService
}

// SetupRoutes registers every endpoint on router. events and gatherer may be
// nil, which leaves /api/events and /metrics unregistered.
func SetupRoutes(router *gin.Engine, svc Services, events EventSubscriber, gatherer prometheus.Gatherer) {
	authHandler := NewAuthHandler(svc.Auth, svc.User)
	dietPlanHandler := NewDietPlanHandler(svc.DietPlan, svc.Advisor)
	foodLogHandler := NewFoodLogHandler(svc.FoodLog)

	authMiddleware := AuthMiddleware(svc.Auth.ParseToken)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		authGroup.GET("/profile", authMiddleware, authHandler.GetProfile)
		authGroup.PUT("/profile", authMiddleware, authHandler.UpdateProfile)
		authGroup.PUT("/preferences", authMiddleware, authHandler.UpdatePreferences)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		// --- Diet plans ---
		// Static segments are registered next to /:id; gin gives them priority.
		dietPlanGroup := protected.Group("/diet-plan")
		{
			dietPlanGroup.POST("/calculate-nutrition-goals", dietPlanHandler.CalculateNutritionGoals)
			dietPlanGroup.POST("/generate", dietPlanHandler.GeneratePlan)
			dietPlanGroup.GET("/active", dietPlanHandler.GetActivePlan)
			dietPlanGroup.GET("", dietPlanHandler.ListPlans)
			dietPlanGroup.POST("", dietPlanHandler.CreatePlan)
			dietPlanGroup.GET("/:id", dietPlanHandler.GetPlan)
			dietPlanGroup.PUT("/:id", dietPlanHandler.UpdatePlan)
			dietPlanGroup.DELETE("/:id", dietPlanHandler.DeletePlan)
		}

		// --- Food log ---
		foodLogGroup := protected.Group("/food-log")
		{
			foodLogGroup.POST("", foodLogHandler.LogFood)
			foodLogGroup.GET("", foodLogHandler.ListFoodLogs)
			foodLogGroup.GET("/today", foodLogHandler.TodayFoodLogs)
			foodLogGroup.GET("/nutrition-summary", foodLogHandler.NutritionSummary)
			foodLogGroup.GET("/:id", foodLogHandler.GetFoodLog)
			foodLogGroup.PUT("/:id", foodLogHandler.UpdateFoodLog)
			foodLogGroup.DELETE("/:id", foodLogHandler.DeleteFoodLog)

			foodLogGroup.POST("/:id/photo/upload-url", foodLogHandler.RequestPhotoUploadURL)
			foodLogGroup.POST("/:id/photo", foodLogHandler.ConfirmPhoto)
			foodLogGroup.GET("/:id/photo", foodLogHandler.GetPhotoURL)
			foodLogGroup.DELETE("/:id/photo", foodLogHandler.DeletePhoto)
		}

		if events != nil {
			protected.GET("/events", NewEventsHandler(events, 0).Stream)
		}
	}
}
