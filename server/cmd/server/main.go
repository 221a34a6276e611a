package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/alerts"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/api"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/auth"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/config"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/metrics"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/store"
	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional .env file loaded before the config")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("attendance-server starting", "config", *configPath)

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A bad threshold policy ends up here as a ConfigurationError.
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	policy, err := cfg.Policy.Resolve()
	if err != nil {
		slog.Error("invalid policy", "err", err)
		os.Exit(1)
	}

	gate := auth.Gate{
		Mode:   cfg.Server.Auth.Mode,
		Header: cfg.Server.Auth.EffectiveHeader(),
		Hash:   cfg.Server.Auth.PasswordHash(),
	}
	if gate.Mode == auth.ModePassword && gate.Hash == "" {
		slog.Error("auth mode is password but the hash env var is empty",
			"env", cfg.Server.Auth.PasswordHashEnv)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"policy", policy.Name,
		"students", cfg.Storage.StudentsPath,
		"attendance", cfg.Storage.AttendancePath,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var m *metrics.Metrics
	if cfg.Server.Metrics.Enabled {
		m = metrics.New()
	}

	roster := store.NewRoster(cfg.Storage.StudentsPath)
	roster.OnBadRow = m.BadRowHook(metrics.SourceRoster, roster.Path())
	attendance := store.NewAttendance(cfg.Storage.AttendancePath)
	attendance.OnBadRow = m.BadRowHook(metrics.SourceAttendance, attendance.Path())
	attendance.Known = store.RosterCheck(roster)

	alertEngine := alerts.New(cfg.Alerts)

	// The hub reads its summaries from the handler, and the handler pokes the
	// hub after writes, so the hook is bound once both exist.
	var (
		hub     *ws.Hub
		handler *api.Handler
	)
	evaluate := func() {
		sum, err := handler.Summary()
		if err != nil {
			slog.Error("alert evaluation skipped", "err", err)
			return
		}
		alertEngine.Evaluate(sum.AlertStudents())
	}
	handler = api.New(api.Deps{
		Roster:     roster,
		Attendance: attendance,
		Subjects:   cfg.Subjects,
		Policy:     policy,
		Gate:       gate,
		Metrics:    m,
		Alerts:     alertEngine,
		OnChange: func() {
			hub.Notify()
			go evaluate()
		},
	})
	hub = ws.New(handler, cfg.Server.Dashboard.Interval)
	go hub.Run(ctx)
	go evaluate()

	// Policy hot reload. Other keys need a restart.
	go func() {
		err := config.WatchPolicy(ctx, *configPath, func(p analytics.Policy) {
			handler.SetPolicy(p)
			hub.Notify()
			evaluate()
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.Logging(handler))
	httpMux.Handle("/ws/stream", gate.Require(auth.CapManage, hub.ServeHTTP))
	if m != nil {
		httpMux.Handle(cfg.Server.Metrics.Path, m.Handler())
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("attendance-server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	alertEngine.Wait()
}
