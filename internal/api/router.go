package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/app"
	iauth "github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/auth/providers"
	"github.com/pawhaven/pawhaven/internal/handlers"
	"github.com/pawhaven/pawhaven/internal/middleware"
	"github.com/pawhaven/pawhaven/internal/security"
	"github.com/pawhaven/pawhaven/internal/services"
	"github.com/pawhaven/pawhaven/pkg/mail"
)

// Deps bundles the shared dependencies the router needs. OIDC is optional;
// when nil the social login routes are not mounted.
type Deps struct {
	DB       *gorm.DB
	JWT      *iauth.JWTService
	Sessions *iauth.SessionService
	Local    *providers.LocalProvider
	OIDC     *providers.OIDCProvider
	Mailer   mail.Mailer
	Rate     middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(cfg *app.Config, deps Deps) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Local == nil {
		return nil, fmt.Errorf("local auth provider must be provided")
	}

	db := deps.DB

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	guard, err := services.NewShelterGuard(db)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	shelterSvc, err := services.NewShelterService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	petSvc, err := services.NewPetService(db)
	if err != nil {
		return nil, err
	}
	adoptionSvc, err := services.NewAdoptionService(db, deps.Mailer, auditSvc)
	if err != nil {
		return nil, err
	}
	inviteOpts := []services.InviteOption{services.WithInviteBaseURL(cfg.Server.PublicURL)}
	if cfg.Maintenance.InviteExpiry > 0 {
		inviteOpts = append(inviteOpts, services.WithInviteExpiry(cfg.Maintenance.InviteExpiry))
	}
	inviteSvc, err := services.NewInviteService(db, deps.Mailer, inviteOpts...)
	if err != nil {
		return nil, err
	}
	campaignSvc, err := services.NewCampaignService(db)
	if err != nil {
		return nil, err
	}
	bookingSvc, err := services.NewBookingService(db)
	if err != nil {
		return nil, err
	}
	sponsorshipSvc, err := services.NewSponsorshipService(db)
	if err != nil {
		return nil, err
	}
	favoriteSvc, err := services.NewFavoriteService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF())
	}
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimitWithStore(deps.Rate, 100, time.Minute))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(db, deps.Local, deps.Sessions)
	shelterHandler := handlers.NewShelterHandler(shelterSvc, guard, userSvc)
	inviteHandler := handlers.NewInviteHandler(inviteSvc, guard, userSvc)
	petHandler := handlers.NewPetHandler(petSvc, guard)
	adoptionHandler := handlers.NewAdoptionHandler(adoptionSvc, guard, userSvc)
	campaignHandler := handlers.NewCampaignHandler(campaignSvc, petSvc, guard)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, guard, userSvc)
	sponsorshipHandler := handlers.NewSponsorshipHandler(sponsorshipSvc, petSvc, guard, userSvc)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	auditHandler := handlers.NewAuditHandler(auditSvc)
	securityHandler := handlers.NewSecurityHandler(security.NewAuditService(db, deps.JWT, cfg))

	requireAuth := middleware.Auth(deps.JWT)
	optionalAuth := middleware.OptionalAuth(deps.JWT)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}
	if deps.OIDC != nil {
		social := handlers.NewSocialAuthHandler(db, deps.OIDC, deps.Sessions)
		auth.GET("/oidc", social.Begin)
		auth.GET("/oidc/callback", social.Callback)
	}

	// Public browsing routes
	public := r.Group("/api")
	public.Use(optionalAuth)
	{
		public.GET("/pets", petHandler.List)
		public.GET("/pets/:id", petHandler.Get)
		public.POST("/pets/:id/adoption-requests", adoptionHandler.Submit)
		public.GET("/shelters", shelterHandler.List)
		public.GET("/shelters/:id", shelterHandler.Get)
		public.GET("/campaigns", campaignHandler.List)
		public.GET("/campaigns/:id", campaignHandler.Get)
		public.POST("/campaigns/:id/donations", campaignHandler.Donate)
		public.GET("/shelters/:id/slots", bookingHandler.ListSlots)
		public.GET("/invites/validate", inviteHandler.Validate)
	}

	// Authenticated routes
	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/password", authHandler.ChangePassword)

	api.PATCH("/profile", userHandler.UpdateProfile)

	api.POST("/shelters", shelterHandler.Apply)
	api.PATCH("/shelters/:id", shelterHandler.Update)
	api.GET("/shelters/:id/members", shelterHandler.Members)
	api.PATCH("/shelters/:id/members/:userId", shelterHandler.UpdateMemberRole)
	api.DELETE("/shelters/:id/members/:userId", shelterHandler.RemoveMember)

	api.POST("/shelters/:id/invites", inviteHandler.Create)
	api.GET("/shelters/:id/invites", inviteHandler.List)
	api.DELETE("/shelters/:id/invites/:inviteId", inviteHandler.Revoke)
	api.POST("/shelters/:id/invites/:inviteId/resend", inviteHandler.Resend)
	api.POST("/invites/accept", inviteHandler.Accept)

	api.POST("/shelters/:id/pets", petHandler.Create)
	api.PATCH("/pets/:id", petHandler.Update)
	api.DELETE("/pets/:id", petHandler.Deactivate)

	api.GET("/shelters/:id/adoption-requests", adoptionHandler.ListForShelter)
	api.GET("/adoption-requests/:id", adoptionHandler.Get)
	api.POST("/adoption-requests/:id/transition", adoptionHandler.Transition)
	api.DELETE("/adoption-requests/:id", adoptionHandler.Cancel)

	api.POST("/campaigns", campaignHandler.Create)
	api.PATCH("/campaigns/:id", campaignHandler.Update)
	api.DELETE("/campaigns/:id", campaignHandler.Cancel)
	api.GET("/campaigns/:id/donations", campaignHandler.Donations)

	api.POST("/shelters/:id/slots", bookingHandler.CreateSlot)
	api.DELETE("/slots/:id", bookingHandler.CloseSlot)
	api.POST("/slots/:id/book", bookingHandler.Book)
	api.GET("/bookings", bookingHandler.ListMine)
	api.DELETE("/bookings/:id", bookingHandler.Cancel)

	api.POST("/sponsorships", sponsorshipHandler.Create)
	api.GET("/sponsorships", sponsorshipHandler.ListMine)
	api.GET("/pets/:id/sponsorships", sponsorshipHandler.ListForPet)
	api.DELETE("/sponsorships/:id", sponsorshipHandler.Cancel)

	api.PUT("/pets/:id/favorite", favoriteHandler.Add)
	api.DELETE("/pets/:id/favorite", favoriteHandler.Remove)
	api.GET("/favorites", favoriteHandler.List)

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(requireAuth, middleware.RequireAdmin(db))
	{
		admin.GET("/users", userHandler.List)
		admin.PATCH("/users/:id/role", userHandler.SetRole)
		admin.PATCH("/users/:id/active", userHandler.SetActive)
		admin.POST("/shelters/:id/verify", shelterHandler.Verify)
		admin.POST("/shelters/:id/reject", shelterHandler.Reject)
		admin.GET("/adoption-requests", adoptionHandler.ListAll)
		admin.GET("/audit-logs", auditHandler.List)
		admin.GET("/security-audit", securityHandler.Run)
	}

	return r, nil
}
