package server

import (
	"context"
	"net/http"
	"time"

	"github.com/devstorehq/sales-service/internal/config"
	"github.com/devstorehq/sales-service/internal/observability"
	"github.com/devstorehq/sales-service/internal/sale"
	saledomain "github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	sale.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain and the
// operational endpoints.
func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine  *gin.Engine
	cfg     config.Config
	db      *gorm.DB
	saleSvc saledomain.Service
}

type ServerParams struct {
	fx.In

	Gin     *gin.Engine
	Cfg     config.Config
	DB      *gorm.DB
	SaleSvc saledomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:  p.Gin,
		cfg:     p.Cfg,
		db:      p.DB,
		saleSvc: p.SaleSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Sales --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.CreateSale)
	api.GET("/sales/:id", s.GetSaleByID)
	api.GET("/sales/number/:number", s.GetSaleByNumber)
	api.POST("/sales/:id/cancel", s.CancelSale)
	api.DELETE("/sales/:id", s.DeleteSale)

	// -------- Sale items --------
	api.POST("/sales/:id/items", s.AddSaleItem)
	api.PATCH("/sales/:id/items/:itemId", s.UpdateSaleItem)
	api.DELETE("/sales/:id/items/:itemId", s.RemoveSaleItem)
}
