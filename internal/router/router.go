package router

import (
	"net/http"
	"time"

	"healthoasis/config"
	"healthoasis/internal/cache"
	"healthoasis/internal/handler"
	"healthoasis/internal/middleware"
	"healthoasis/internal/repository"
	"healthoasis/internal/service"
	"healthoasis/internal/ws"
	"healthoasis/pkg/cloudinary"
	"healthoasis/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the external collaborators built in main. Images, Mailer and Push
// may be nil when the matching integration is not configured.
type Deps struct {
	DB       *gorm.DB
	Cache    cache.Store
	Images   cloudinary.Uploader
	Mailer   service.Mailer
	Push     service.Pusher
	Payments payment.Provider
	Log      *logrus.Logger
}

func Setup(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Repositories
	catalogRepo := repository.NewCatalogRepository(d.DB)
	doctorRepo := repository.NewDoctorRepository(d.DB)
	formRepo := repository.NewFormRepository(d.DB)
	walletRepo := repository.NewWalletRepository(d.DB)
	paymentRepo := repository.NewPaymentRepository(d.DB, walletRepo)
	callRepo := repository.NewVideoCallRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)

	// Services
	catalogSvc := service.NewCatalogService(catalogRepo, doctorRepo, d.Cache, cfg.Redis.TTL, d.Log)
	formSvc := service.NewFormService(catalogSvc, catalogSvc, formRepo)
	notifySvc := service.NewNotificationService(doctorRepo, notificationRepo, d.Push, d.Mailer, cfg.Server.PublicURL, d.Log)

	// Handlers
	catalogH := handler.NewCatalogHandler(catalogSvc, d.Log)
	formH := handler.NewFormHandler(formSvc, d.Log)
	walletH := handler.NewWalletHandler(walletRepo, &cfg.JWT, d.Log)
	paymentH := handler.NewPaymentHandler(d.Payments, paymentRepo, cfg, d.Log)
	callH := handler.NewVideoCallHandler(callRepo, notifySvc, d.Log)
	doctorH := handler.NewDoctorHandler(doctorRepo, catalogSvc, d.Images, &cfg.JWT, d.Log)
	notificationH := handler.NewNotificationHandler(notificationRepo, d.Log)

	hub := ws.NewHub(d.Log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/signaling", ws.ServeSignaling(hub))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.NewRateLimiter(100, time.Minute)))
	{
		api.GET("/departments", catalogH.Departments)
		api.GET("/doctors", catalogH.Doctors)
		api.GET("/doctors/:id", catalogH.Doctor)
		api.GET("/working-hours", catalogH.WorkingHours)
		api.GET("/contact-info", catalogH.ContactInfo)

		forms := api.Group("", middleware.RateLimit(middleware.NewRateLimiter(10, time.Minute)))
		forms.POST("/appointments", formH.CreateAppointment)
		forms.POST("/messages", formH.CreateMessage)

		api.POST("/wallet/login", walletH.Login)
		wallet := api.Group("/wallet", middleware.WalletAuth(&cfg.JWT))
		wallet.GET("", walletH.Get)
		wallet.POST("/withdraw", walletH.Withdraw)

		api.POST("/stripe/create-checkout-session", paymentH.CreateCheckoutSession)
		api.POST("/enhanced-wallet/create-payment-intent", paymentH.CreatePaymentIntent)
		api.POST("/payments/webhook", paymentH.Webhook)

		api.POST("/video-calls", callH.Start)
		api.POST("/video-calls/end", callH.End)
		api.POST("/video-call/invite", callH.Invite)
		api.POST("/notify-doctor", callH.NotifyDoctor)

		api.POST("/doctors/login", doctorH.Login)
		doctor := api.Group("/doctors/:id", middleware.DoctorAuth(&cfg.JWT), middleware.SameDoctor())
		doctor.POST("/photo", doctorH.UploadPhoto)
		doctor.PUT("/fcm-token", doctorH.UpdateFCMToken)
		doctor.PUT("/availability", doctorH.UpdateAvailability)
		doctor.GET("/video-calls", callH.ListForDoctor)
		doctor.GET("/notifications", notificationH.List)
		doctor.PUT("/notifications/:notificationId/read", notificationH.MarkRead)
	}
	return r
}
