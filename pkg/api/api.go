package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/apiresponses"
	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/metrics"
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin    *gin.Engine
	config config.Config
}

func NewServer(log *zap.Logger, cfg config.Config, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type"},
			MaxAge:          12 * time.Hour,
		}),
	)
	if len(cfg.Server.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.Server.TrustedProxies)
	}

	// Only POST and OPTIONS are accepted on registered routes; everything
	// else is answered with an explicit 405 rather than gin's default 404.
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(apiresponses.RespondMethodNotAllowed)
	engine.NoRoute(apiresponses.RespondNotFound)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		gin:    engine,
		config: cfg,
	}
}

func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) Listen() {
	_ = s.gin.Run(s.config.Server.ListenAddress)
}

// Engine exposes the underlying gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.gin
}
