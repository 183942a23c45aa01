// @title       Cafe API
// @version     1.0
// @description Menu, accounts and orders for the café.
// @BasePath    /api
// @securityDefinitions.apikey Session
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/MikeMC777/cafe/docs"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/config"
	"github.com/MikeMC777/cafe/internal/database"
	"github.com/MikeMC777/cafe/internal/httpx"
	"github.com/MikeMC777/cafe/internal/logging"
	"github.com/MikeMC777/cafe/internal/menu"
	"github.com/MikeMC777/cafe/internal/order"
	"github.com/MikeMC777/cafe/internal/user"
)

const healthService = "cafe"

type app struct {
	users    *user.Service
	menu     *menu.Service
	orders   *order.Service
	sessions auth.Store
	ping     func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	cfg.Log()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logrus.Fatalf("failed to migrate database, error: %v", err)
		}
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database, error: %v", err)
	}
	defer pool.Close()

	var sessions auth.Store = auth.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisURL != "" {
		rs, err := auth.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			logrus.Fatalf("redis: %v", err)
		}
		defer rs.Close()
		sessions = rs
		logrus.Info("sessions stored in redis")
	}

	menuSvc := menu.NewService(menu.NewPGRepo(pool))
	a := &app{
		users:    user.NewService(user.NewPGRepo(pool), menuSvc),
		menu:     menuSvc,
		orders:   order.NewService(order.NewPGRepo(pool)),
		sessions: sessions,
		ping:     pool.Ping,
	}

	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		logrus.Fatalf("grpc listen: %v", err)
	}
	go func() {
		logrus.Infof("grpc health listening on %s", cfg.GRPCHealthAddr)
		if err := gs.Serve(lis); err != nil {
			logrus.WithError(err).Error("grpc health stopped")
		}
	}()
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())
	registerRoutes(r, a)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logrus.Infof("cafe-api listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down...")
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("http shutdown")
	}
	gs.GracefulStop()
}

func registerRoutes(r *gin.Engine, a *app) {
	r.GET("/healthz", healthHandler(a.ping))

	api := r.Group("/api")
	api.POST("/users", signUpHandler(a.users))
	api.POST("/sessions", loginHandler(a.users, a.sessions))
	api.GET("/menu", listMenuHandler(a.menu))
	api.GET("/menu/search", searchMenuHandler(a.menu))
	api.GET("/menu/items/:name", getItemHandler(a.menu))

	authed := api.Group("", httpx.RequireSession(a.sessions, a.users))
	authed.DELETE("/sessions", logoutHandler(a.sessions))

	authed.POST("/menu/items", createItemHandler(a.menu))
	authed.PATCH("/menu/items/:name", updateItemHandler(a.menu))
	authed.DELETE("/menu/items/:name", deleteItemHandler(a.menu))
	authed.POST("/menu/types/rename", changeTypeHandler(a.menu))

	authed.GET("/profile", getProfileHandler(a.users))
	authed.PATCH("/profile", updateSelfHandler(a.users, a.sessions))
	authed.GET("/users/:login", getUserHandler(a.users))
	authed.PATCH("/users/:login", updateOtherHandler(a.users))
	authed.PUT("/users/:login/favorites", setFavoritesHandler(a.users))
	authed.DELETE("/users/:login/favorites", clearFavoritesHandler(a.users))

	authed.POST("/orders", placeOrderHandler(a.orders))
	authed.GET("/orders", recentOrdersHandler(a.orders))
	authed.GET("/unpaid-orders", unpaidOrdersHandler(a.orders))
	authed.GET("/orders/:id", getOrderHandler(a.orders))
	authed.DELETE("/orders/:id", cancelOrderHandler(a.orders))
	authed.POST("/orders/:id/pay", payOrderHandler(a.orders))
	authed.POST("/orders/:id/items", addOrderItemHandler(a.orders))
	authed.DELETE("/orders/:id/items/:item", removeOrderItemHandler(a.orders))
	authed.PUT("/orders/:id/items/:item/comment", commentHandler(a.orders))
	authed.PUT("/orders/:id/items/:item/status", itemStatusHandler(a.orders))
}

// healthHandler godoc
// @Summary Liveness and database check
// @Tags    health
// @Success 200 {string} string "ok"
// @Failure 503 {object} menu.HTTPError
// @Router  /healthz [get]
func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, menu.HTTPError{Error: "database unavailable"})
				return
			}
		}
		c.String(http.StatusOK, "ok")
	}
}
