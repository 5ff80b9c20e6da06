package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/engagement-backend/internal/config"
	"github.com/ignatzorin/engagement-backend/internal/http/handlers"
	"github.com/ignatzorin/engagement-backend/internal/http/middleware"
	"github.com/ignatzorin/engagement-backend/internal/models"
)

// Handlers собирает все хэндлеры HTTP слоя.
type Handlers struct {
	Engagement   *handlers.EngagementHandler
	Deliverable  *handlers.DeliverableHandler
	Feedback     *handlers.FeedbackHandler
	Escrow       *handlers.EscrowHandler
	Portfolio    *handlers.PortfolioHandler
	Notification *handlers.NotificationHandler
	Health       *handlers.HealthHandler
	WS           *handlers.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if cfg.Upload.Enabled && strings.HasPrefix(cfg.Upload.PublicBaseURL, "/") {
		r.StaticFS(cfg.Upload.PublicBaseURL, http.Dir(cfg.Upload.StoragePath))
	}

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)
	api.GET("/ws", h.WS.Handle)

	// один счётчик на все изменяющие запросы клиента
	limited := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	clientOrAdmin := middleware.RequireRoles(models.RoleClient, models.RoleAdmin)
	freelancerOnly := middleware.RequireRoles(models.RoleFreelancer)

	public := api.Group("")
	public.Use(middleware.OptionalAuth(tokens))
	{
		public.GET("/users/:id/portfolio", h.Portfolio.ListFreelancerPortfolio)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	engagements := protected.Group("/engagements")
	{
		engagements.POST("", limited, middleware.RequireRoles(models.RoleClient), h.Engagement.CreateEngagement)
		engagements.GET("/my", h.Engagement.ListMyEngagements)
		engagements.GET("/:id", h.Engagement.GetEngagement)
		engagements.POST("/:id/assign", limited, clientOrAdmin, h.Engagement.AssignFreelancer)
		engagements.POST("/:id/start", limited, h.Engagement.StartEngagement)
		engagements.POST("/:id/complete", limited, clientOrAdmin, h.Engagement.CompleteEngagement)
		engagements.POST("/:id/cancel", limited, h.Engagement.CancelEngagement)

		engagements.POST("/:id/deliverables", limited, freelancerOnly, h.Deliverable.SubmitDeliverable)
		engagements.GET("/:id/deliverables", h.Deliverable.ListDeliverables)

		engagements.POST("/:id/escrow", limited, clientOrAdmin, h.Escrow.OpenEscrow)
		engagements.GET("/:id/escrow", h.Escrow.GetEscrow)
		engagements.POST("/:id/invoices", limited, clientOrAdmin, h.Escrow.IssueInvoice)
	}

	deliverables := protected.Group("/deliverables")
	{
		deliverables.GET("/compare", h.Deliverable.CompareDeliverables)
		deliverables.GET("/:id", h.Deliverable.GetDeliverable)
		deliverables.POST("/:id/approve", limited, clientOrAdmin, h.Deliverable.ApproveDeliverable)
		deliverables.POST("/:id/request-revision", limited, clientOrAdmin, h.Deliverable.RequestRevision)
		deliverables.POST("/:id/reject", limited, clientOrAdmin, h.Deliverable.RejectDeliverable)
		deliverables.POST("/:id/feedback", limited, h.Feedback.PostFeedback)
		deliverables.GET("/:id/feedback", h.Feedback.ListFeedback)
	}

	feedback := protected.Group("/feedback")
	{
		feedback.POST("/:id/resolve", limited, h.Feedback.ResolveFeedback)
		feedback.POST("/:id/unresolve", limited, h.Feedback.UnresolveFeedback)
	}

	escrow := protected.Group("/escrow")
	escrow.Use(limited, clientOrAdmin)
	{
		escrow.POST("/:id/release", h.Escrow.ReleaseEscrow)
		escrow.POST("/:id/refund", h.Escrow.RefundEscrow)
		escrow.POST("/:id/dispute", h.Escrow.DisputeEscrow)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("/my", h.Escrow.ListMyInvoices)
		invoices.GET("/:id", h.Escrow.GetInvoice)
		invoices.POST("/:id/pay", limited, middleware.RequireRoles(models.RoleClient), h.Escrow.PayInvoice)
		invoices.POST("/:id/cancel", limited, middleware.RequireRoles(models.RoleAdmin), h.Escrow.CancelInvoice)
	}

	portfolio := protected.Group("/portfolio")
	{
		portfolio.PATCH("/:id", limited, freelancerOnly, h.Portfolio.UpdatePortfolioItem)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.ListNotifications)
		notifications.GET("/unread/count", h.Notification.CountUnread)
		notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
		notifications.PUT("/:id/read", h.Notification.MarkAsRead)
	}

	return r
}
