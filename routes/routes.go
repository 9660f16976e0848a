package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Jayr222/appointment-systemv2-sub002/handlers"
	"github.com/Jayr222/appointment-systemv2-sub002/middleware"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Slots   *handlers.SlotsHandler
	Booking *handlers.BookingHandler
	Stream  *handlers.StreamHandler
}

// RegisterSlotRoutes registers the public availability endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.GET("", hb.Slots.GetSlotsHandler)
		api.GET("/stream", hb.Stream.StreamSlotsHandler)
	}
}

// RegisterAppointmentRoutes registers the authenticated booking endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.PatientAuthMiddleware())
		api.GET("", hb.Booking.GetMyAppointmentsHandler)
		api.POST("", hb.Booking.BookAppointmentHandler)
		api.POST("/:id/cancel", hb.Booking.CancelAppointmentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSlotRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
