// Package api содержит HTTP-интерфейс движка записи на уроки
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/auth"
	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck проверяет одну зависимость
type HealthCheck func(ctx context.Context) bool

// Options настройки HTTP-слоя
type Options struct {
	SigningKey   string
	Issuer       string
	RateLimit    int // запросов в минуту на клиента, 0 отключает ограничение
	DevTokens    bool
	CORSOrigins  []string // пусто: только same-origin, "*": любой origin без cookies
	Checks       map[string]HealthCheck
	Gatherer     prometheus.Gatherer
	StreamPeriod time.Duration // keep-alive для SSE
}

// Services сервисы, которые обслуживает API
type Services struct {
	Bookings     *service.BookingService
	Teacher      *service.TeacherService
	Availability *service.AvailabilityService
	Rates        *service.RateResolver
	Homework     *service.HomeworkService
	Users        *service.UserService
}

type Handler struct {
	Services
	opts   Options
	logger *zap.Logger
}

func NewHandler(services Services, opts Options, logger *zap.Logger) *Handler {
	if opts.StreamPeriod <= 0 {
		opts.StreamPeriod = 15 * time.Second
	}
	return &Handler{Services: services, opts: opts, logger: logger}
}

// NewRouter собирает gin-роутер со всеми маршрутами
func NewRouter(h *Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.logger, "/healthz", "/metrics"))
	if cors := corsMiddleware(h.opts.CORSOrigins); cors != nil {
		r.Use(cors)
	}
	r.Use(securityHeaders())
	r.Use(m.GinMiddleware())

	gatherer := h.opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", h.health)

	if h.opts.DevTokens {
		r.POST("/v1/dev/token", h.devToken)
	}

	v1 := r.Group("/v1",
		auth.Middleware(h.opts.SigningKey, h.opts.Issuer),
		NewTokenBucket(h.opts.RateLimit, h.opts.RateLimit).GinMiddleware(),
		h.actorMiddleware(),
	)

	v1.GET("/slots/open", h.openSlots)
	v1.GET("/slots/stream", h.streamSlots)
	v1.GET("/rate", h.currentRate)
	v1.POST("/quote", h.quote)

	v1.POST("/bookings", h.book)
	v1.GET("/bookings/mine", h.myBookings)
	v1.DELETE("/bookings/:id", h.cancelBooking)
	v1.POST("/bookings/:id/reschedule", h.reschedule)

	v1.GET("/homework/mine", h.myHomework)
	v1.POST("/homework/:id/toggle", h.toggleHomework)

	teacher := v1.Group("/teacher", auth.RequireRole(string(model.RoleTeacher)))
	teacher.POST("/slots", h.publishSlots)
	teacher.GET("/slots", h.teacherSlots)
	teacher.DELETE("/slots/:id", h.deleteSlot)
	teacher.POST("/slots/delete", h.deleteSlots)
	teacher.PUT("/rate", h.setRate)
	teacher.GET("/students", h.roster)
	teacher.DELETE("/students/:id", h.removeStudent)
	teacher.POST("/homework", h.assignHomework)
	teacher.GET("/homework", h.teacherHomework)
	teacher.DELETE("/homework/:id", h.deleteHomework)
	teacher.GET("/earnings", h.earnings)

	return r
}

func (h *Handler) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.opts.Checks {
		healthy := check(c.Request.Context())
		body[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// devToken выдаёт токен без проверки личности; включается только вне production
func (h *Handler) devToken(c *gin.Context) {
	var req struct {
		Subject string `json:"sub" binding:"required"`
		Role    string `json:"role" binding:"required,oneof=teacher student"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, exp, err := auth.Issue(auth.Identity{
		Subject:       req.Subject,
		Role:          req.Role,
		Name:          req.Name,
		Email:         req.Email,
		EmailVerified: true,
	}, h.opts.Issuer, h.opts.SigningKey, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"access_token": token, "expires_at": exp.Unix()})
}

const actorKey = "actor"

// actorMiddleware создаёт профиль по токену и кладёт Actor в контекст
func (h *Handler) actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := auth.ClaimsFrom(c)

		role := model.Role(claims.Role)
		if role != model.RoleTeacher && role != model.RoleStudent {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown role"})
			return
		}

		user, err := h.Users.EnsureFromClaims(c.Request.Context(), claims.Subject, claims.Name, claims.Email, role)
		if err != nil {
			h.respondError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, service.ActorOf(user))
		c.Next()
	}
}

func actorFrom(c *gin.Context) service.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(service.Actor)
	return actor
}
