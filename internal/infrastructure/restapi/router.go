package restapi

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures the ambient endpoints around the API.
type RouterOptions struct {
	AllowOrigins []string
	Gatherer     prometheus.Gatherer
	EnablePprof  bool
	Logger       *zap.Logger
}

// SetupRouter configures and returns the gin engine.
func SetupRouter(positions *PositionHandler, accounts *AccountHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", userIDHeader}
	router.Use(cors.New(corsConfig))
	router.Use(zapLoggerMiddleware(logger.Named("HTTP")))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/chains", positions.GetChainsHandler)
		v1.GET("/snapshots", positions.GetSnapshotsHandler)
		v1.GET("/snapshots/:chain/:address/:version", positions.GetSnapshotHandler)
		v1.GET("/health-factors", positions.GetHealthFactorsHandler)

		v1.GET("/accounts", accounts.ListAccountsHandler)
		v1.POST("/accounts", accounts.AddAccountHandler)
		v1.DELETE("/accounts/:chain/:address/:version", accounts.DeleteAccountHandler)

		v1.GET("/settings", accounts.GetSettingsHandler)
		v1.PUT("/settings/threshold", accounts.SetThresholdHandler)
		v1.PUT("/settings/device-token", accounts.SetDeviceTokenHandler)
	}

	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		}
		logger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	return router
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
