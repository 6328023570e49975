package routes

import (
	"net/http"
	"time"

	"cabinet-backend/config"
	"cabinet-backend/controllers"
	"cabinet-backend/models"
	"cabinet-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	CORSOrigins []string
	JWTSecret   string
	Gatherer    prometheus.Gatherer
	Logger      zerolog.Logger
}

func SetupRouter(h *controllers.Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(cfg.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := utils.AuthMiddleware(cfg.JWTSecret)
	activeUser := h.ActiveUser()
	adminOnly := utils.RequireRole(string(models.RoleAdmin))
	clinical := utils.RequireRole(string(models.RoleAdmin), string(models.RolePractitioner))

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)

		auth.Use(requireAuth, activeUser)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}

	api := r.Group("/api")
	api.Use(requireAuth, activeUser)
	{
		patients := api.Group("/patients")
		{
			patients.POST("", h.CreatePatient)
			patients.GET("", h.GetPatients)
			patients.GET("/:id", h.GetPatient)
			patients.PUT("/:id", h.UpdatePatient)
			patients.DELETE("/:id", adminOnly, h.DeletePatient)
		}

		appointments := api.Group("/appointments")
		{
			appointments.POST("", h.CreateAppointment)
			appointments.GET("", h.GetAppointments)
			appointments.GET("/date/:date", h.GetAppointmentsByDate)
			appointments.GET("/:id", h.GetAppointment)
			appointments.PUT("/:id", h.UpdateAppointment)
			appointments.DELETE("/:id", h.DeleteAppointment)
			appointments.POST("/:id/reminder", h.SendReminder)
			appointments.POST("/:id/payment", h.RecordPayment)
		}

		records := api.Group("/medical-records", clinical)
		{
			records.POST("", h.CreateMedicalRecord)
			records.GET("", h.GetMedicalRecords)
			records.GET("/:id", h.GetMedicalRecord)
			records.PUT("/:id", h.UpdateMedicalRecord)
			records.DELETE("/:id", h.DeleteMedicalRecord)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", h.CreateInvoice)
			invoices.GET("", h.GetInvoices)
			invoices.GET("/:id", h.GetInvoice)
			invoices.PUT("/:id", h.UpdateInvoice)
			invoices.POST("/:id/pay", h.PayInvoice)
		}

		users := api.Group("/users", adminOnly)
		{
			users.POST("", h.CreateUser)
			users.GET("", h.GetUsers)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}
		api.GET("/practitioners", h.GetPractitioners)

		api.GET("/cabinet", h.GetCabinet)
		api.PUT("/cabinet", adminOnly, h.UpdateCabinet)

		api.GET("/stats", h.GetStats)
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/payments", h.GetPayments)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.GetNotifications)
			notifications.GET("/stream", h.StreamNotifications)
			notifications.DELETE("/:id", h.DismissNotification)
		}

		admin := api.Group("/admin", adminOnly)
		{
			admin.POST("/reset-demo", h.ResetDemo)
			admin.POST("/reconcile", h.Reconcile)
			admin.POST("/reminders/run", h.RunReminders)
		}
	}

	return r
}
