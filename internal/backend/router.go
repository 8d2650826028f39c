// Package backend is a self-contained stand-in for the campus-complaint REST service,
// used for local development and end-to-end tests of the client.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"campuscomplaint/internal/backend/controller"
	"campuscomplaint/internal/backend/middleware"
	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/backend/service"
	"campuscomplaint/internal/common/kv"
	commonmw "campuscomplaint/internal/common/http/middleware"
	"campuscomplaint/internal/common/storage"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "campuscomplaint_stub"

// AdminConfig seeds one administrator account at startup.
type AdminConfig struct {
	Name         string `yaml:"name"`
	MobileNumber string `yaml:"mobileNumber"`
	Email        string `yaml:"email"`
	Password     string `yaml:"password" env:"CAMPUS_ADMIN_PASSWORD"`
}

// Config is the stub service configuration.
type Config struct {
	PublicURL  string                         `yaml:"publicURL"`
	JWT        service.TokenConfig            `yaml:"jwt"`
	Complaints service.ComplaintServiceConfig `yaml:"complaints"`
	CORS       commonmw.CORSConfig            `yaml:"cors"`
	Admin      AdminConfig                    `yaml:"admin"`
}

// Components are the pluggable backends. Nil fields fall back to in-memory implementations.
type Components struct {
	Photos    storage.ObjectStorage
	OTPStore  kv.Store
	Geocoder  complaint.Geocoder
	OTPSender service.OTPSender
	Registry  *prometheus.Registry
}

// Server holds the router and the services behind it.
type Server struct {
	Engine *gin.Engine
	Auth   *service.AuthService
	Tokens *service.TokenIssuer
}

// New wires repositories, services and routes.
func New(ctx context.Context, cfg Config, comps Components) (*Server, error) {
	tokens, err := service.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}
	if comps.Photos == nil {
		comps.Photos = storage.NewMemoryStorage()
	}
	if comps.OTPStore == nil {
		comps.OTPStore = kv.NewMemoryStore()
	}
	if comps.Registry == nil {
		comps.Registry = prometheus.NewRegistry()
	}

	users := repository.NewMemoryUserRepository()
	complaints := repository.NewMemoryComplaintRepository()
	notifications := repository.NewMemoryNotificationRepository()
	otps := repository.NewOTPRepository(comps.OTPStore)

	authService := service.NewAuthService(users, otps, tokens, comps.OTPSender)
	userService := service.NewUserService(users)
	complaintService := service.NewComplaintService(complaints, users, notifications, comps.Photos, comps.Geocoder, cfg.Complaints)
	notificationService := service.NewNotificationService(notifications)

	if cfg.Admin.MobileNumber != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.MobileNumber, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return nil, fmt.Errorf("seed admin failed: %w", err)
		}
	}

	metrics, err := commonmw.NewMetrics(comps.Registry, metricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("register metrics failed: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.Trace())
	r.Use(commonmw.AccessLog())
	r.Use(metrics.Handler())
	r.Use(commonmw.CORS(cfg.CORS))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(comps.Registry, promhttp.HandlerOpts{})))

	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	complaintController := controller.NewComplaintController(complaintService, cfg.PublicURL)
	notificationController := controller.NewNotificationController(notificationService)

	requireUser := middleware.Auth(tokens)
	requireAdmin := middleware.Auth(tokens, model.RoleAdmin)

	auth := r.Group("/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh", authController.Refresh)
	auth.POST("/request-password-reset", authController.RequestPasswordReset)
	auth.POST("/reset-password", authController.ResetPassword)
	auth.POST("/update-role", requireAdmin, authController.UpdateRole)

	user := r.Group("/user", requireUser)
	user.GET("/profile", userController.Profile)
	user.PUT("/edit", userController.Edit)
	user.GET("", requireAdmin, userController.List)

	notificationsGroup := r.Group("/api/notifications", requireUser)
	notificationsGroup.GET("/unread", notificationController.Unread)
	notificationsGroup.POST("/mark-read", notificationController.MarkRead)

	complaintsGroup := r.Group("/api/complaints", requireUser)
	complaintsGroup.POST("/submit", complaintController.Submit)
	complaintsGroup.GET("/map/list", complaintController.MapList)
	complaintsGroup.GET("/history/my", complaintController.ListMine)

	r.GET("/api/complaints/admin/search", requireUser, complaintController.Search)

	admin := r.Group("/api/complaints/admin", requireAdmin)
	admin.GET("/", complaintController.ListAll)
	admin.PUT("/bulk-update", complaintController.BulkUpdate)
	admin.GET("/:id", complaintController.Detail)
	admin.PUT("/:id", complaintController.Update)

	r.GET("/uploads/*key", complaintController.Photo)

	return &Server{Engine: r, Auth: authService, Tokens: tokens}, nil
}
