package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/venue-booking/controllers"
	"github.com/yeremiapane/venue-booking/middlewares"
	"github.com/yeremiapane/venue-booking/realtime"
	"github.com/yeremiapane/venue-booking/session"
	"gorm.io/gorm"
)

// Deps are the shared services the routes are wired to.
type Deps struct {
	DB         *gorm.DB
	Sessions   *session.Manager
	Hub        *realtime.Hub
	CORSOrigin string
	RateLimit  int
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, 1).RateLimit())
	}

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(deps.DB, deps.Sessions)
	tableCtrl := controllers.NewTableController()
	bookingCtrl := controllers.NewBookingController()
	reportCtrl := controllers.NewReportController()
	realtimeCtrl := controllers.NewRealtimeController(deps.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	r.GET("/api/ws", middlewares.WebSocketAuthMiddleware(deps.Sessions), realtimeCtrl.WebSocketHandler)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(deps.Sessions))
	{
		api.POST("/logout", authCtrl.Logout)
		api.GET("/me", authCtrl.Me)

		api.GET("/tables", tableCtrl.GetTables)
		api.PUT("/date", tableCtrl.SelectDate)
		api.POST("/tables/:table_id/reserve", tableCtrl.Reserve)

		api.GET("/bookings/mine", bookingCtrl.MyBookings)
		api.PATCH("/bookings/:booking_id", bookingCtrl.UpdateBooking)
		api.DELETE("/bookings/:booking_id", bookingCtrl.CancelBooking)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.RequireAdmin())
	{
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.PATCH("/tables/:table_id/position", tableCtrl.UpdatePosition)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
		admin.POST("/tables/:table_id/release", tableCtrl.ReleaseTable)
		admin.POST("/tables/:table_id/charges", tableCtrl.AddCharge)

		admin.PATCH("/bookings/:booking_id/guests/:guest_id/arrival", bookingCtrl.ToggleArrival)

		admin.GET("/stats", reportCtrl.GetStats)
		admin.GET("/reports", reportCtrl.GetReport)
		admin.GET("/reports/export.csv", reportCtrl.ExportCSV)
		admin.GET("/reports/export.pdf", reportCtrl.ExportPDF)
		admin.GET("/reports/chart.png", reportCtrl.Chart)
	}

	return r
}
