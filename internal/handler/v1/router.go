package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config    *config.Config
	Handler   *Handler
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(deps.Log),
		Metrics(deps.Collector),
		CORS(deps.Config.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))

	h := deps.Handler
	api := r.Group("/api/v1", RateLimit(deps.Config.RateLimit))

	api.POST("/users", h.RegisterUser)
	api.POST("/reminders/tick", h.TriggerReminders)

	user := api.Group("/users/:userId")
	user.GET("", h.GetUser)

	user.POST("/metrics", h.RecordMetric)
	user.GET("/metrics", h.ListMetrics)
	user.GET("/metrics/:id", h.GetMetric)

	user.POST("/symptoms", h.RecordSymptom)
	user.GET("/symptoms", h.ListSymptoms)
	user.GET("/symptoms/:id", h.GetSymptom)
	user.PUT("/symptoms/:id", h.UpdateSymptom)

	user.POST("/appointments", h.ScheduleAppointment)
	user.GET("/appointments/upcoming", h.UpcomingAppointments)
	user.GET("/appointments/history", h.AppointmentHistory)
	user.GET("/appointments/:id", h.GetAppointment)
	user.PUT("/appointments/:id", h.UpdateAppointment)
	user.DELETE("/appointments/:id", h.CancelAppointment)

	user.GET("/notifications", h.ListNotifications)
	user.PATCH("/notifications/:id/read", h.MarkNotificationRead)
	user.DELETE("/notifications/:id", h.DeleteNotification)

	return r
}
