package main

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/organizer"
	"github.com/fastygo/taskboard/usecase/workspace"
)

func serve(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	appCtx, cancel := context.WithCancel(parent)
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, log)
	manager.Listen(cancel)

	gateway, err := openGateway(appCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	manager.Register("gateway", func(ctx context.Context) error {
		return gateway.Close()
	})

	mon := monitor.New(gateway, cfg.Monitor.Interval, log)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	opts := []organizer.Option{}
	var metricsHandler fasthttp.RequestHandler
	if cfg.HTTP.EnableMetrics {
		m := metrics.New("taskboard")
		opts = append(opts, organizer.WithRecorder(m))
		metricsHandler = m.Handler()
	}

	coordinator := organizer.New(workspace.New(), gateway, log, opts...)
	if err := coordinator.Load(appCtx); err != nil {
		return err
	}
	manager.Register("coordinator", coordinator.Close)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	handlers := router.Handlers{
		Drag:     apiHandler.NewDragHandler(coordinator, ctxAdapter, log),
		Board:    apiHandler.NewBoardHandler(coordinator, ctxAdapter, log),
		Task:     apiHandler.NewTaskHandler(coordinator, ctxAdapter, log),
		Session:  apiHandler.NewSessionHandler(coordinator, ctxAdapter, log),
		Settings: apiHandler.NewSettingsHandler(coordinator, ctxAdapter, log),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, log),
		Metrics:  metricsHandler,
	}
	r := router.New(handlers, middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, log))

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxConnsPerIP:      cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("backend", mon.GetStatus().Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			serveErr <- err
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		log.Error("graceful shutdown error", zap.Error(err))
	}
	select {
	case err := <-serveErr:
		return fmt.Errorf("server crashed: %w", err)
	default:
		return nil
	}
}
