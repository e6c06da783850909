package api

import (
	"net/http"

	"github.com/binhbb2204/BookHub/internal/auth"
	"github.com/binhbb2204/BookHub/internal/book"
	"github.com/binhbb2204/BookHub/internal/events"
	"github.com/binhbb2204/BookHub/internal/health"
	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/internal/ratelimit"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/metrics"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	JWTSecret   string
	FrontendURL string
	Service     *library.Service
	Hub         *events.Hub
	Limiter     *ratelimit.KeyedRateLimiter
	Logger      *logger.Logger
}

// NewRouter wires every HTTP route of the API server.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log.WithContext("component", "http")))

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{opts.FrontendURL}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.ExposeHeaders = []string{"Content-Length"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	var hubRunner health.Runner
	var publisher book.Publisher
	if opts.Hub != nil {
		hubRunner = opts.Hub
		publisher = opts.Hub
	}

	authHandler := auth.NewHandler(opts.JWTSecret)
	bookHandler := book.NewHandler(opts.Service, publisher)
	healthHandler := health.NewHandler(opts.Service.Store(), hubRunner)
	metricsHandler := metrics.NewHandler()

	router.GET("/health", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)
	router.GET("/metrics", metricsHandler.Metrics)
	router.GET("/test", func(c *gin.Context) {
		utils.RespondSuccess(c, http.StatusOK, "Backend is working fine.", nil)
	})

	v1 := router.Group("/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}
	protectedAuth := v1.Group("/auth")
	protectedAuth.Use(auth.AuthMiddleware(opts.JWTSecret))
	{
		protectedAuth.POST("/change-password", authHandler.ChangePassword)
	}

	throttle := func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		throttle = opts.Limiter.Middleware()
	}

	bookGroup := v1.Group("/book")
	bookGroup.Use(auth.AuthMiddleware(opts.JWTSecret))
	{
		bookGroup.GET("", bookHandler.ListBooks)
		bookGroup.POST("", throttle, bookHandler.AddBook)
		bookGroup.GET("/favourites", bookHandler.ListFavourites)
		bookGroup.POST("/rating", throttle, bookHandler.AddRating)
		bookGroup.GET("/:id", bookHandler.GetBook)
		bookGroup.DELETE("/:id", bookHandler.DeleteBook)
		bookGroup.GET("/:id/statistics", bookHandler.Statistics)
		bookGroup.POST("/:id/favourite", throttle, bookHandler.ToggleFavourite)
	}

	if opts.Hub != nil {
		live := events.NewServer(opts.Hub, opts.JWTSecret, opts.Service)
		v1.GET("/book/:id/live", live.ServeBook)
	}

	router.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusInternalServerError, "No such matching route was found")
	})

	return router
}
