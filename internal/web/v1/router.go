package v1

import (
	"github.com/duynhne/connectspark-service/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on rg. auth runs before every route; admin
// routes additionally require the admin role.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	api := rg.Group("", auth)
	{
		api.GET("/onboarding/status", h.GetOnboardingStatus)

		api.GET("/profile", h.GetMyProfile)
		api.PUT("/profile", h.UpsertMyProfile)
		api.GET("/profiles/:id", h.GetProfile)

		api.POST("/events/answers", h.SubmitAnswers)
		api.POST("/events/join", h.JoinEvent)
		api.GET("/events/mine", h.MyEvents)
		api.GET("/events/:id", h.GetEvent)
		api.GET("/events/:id/attendees", h.ListAttendees)
		api.GET("/events/:id/matches", h.ListMatches)
		api.POST("/events/:id/matches/compute", h.ComputeMatches)
		api.POST("/events/:id/recap", h.GenerateRecap)

		api.GET("/matches/:id", h.GetMatch)

		api.GET("/connections", h.ListConnections)
		api.POST("/connections", h.RequestConnection)
		api.POST("/connections/:id/accept", h.AcceptConnection)
		api.POST("/connections/:id/reject", h.RejectConnection)

		api.GET("/dashboard", h.GetDashboard)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/events", h.CreateEvent)
		admin.GET("/events", h.ListEvents)
		admin.POST("/events/:id/end", h.EndEvent)
		admin.DELETE("/events/:id", h.DeleteEvent)
		admin.POST("/events/:id/recompute", h.RecomputeEvent)
	}
}
