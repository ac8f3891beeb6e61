package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inamate/inkcanvas/internal/api"
	"github.com/inamate/inkcanvas/internal/auth"
	"github.com/inamate/inkcanvas/internal/board"
	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/collab"
	"github.com/inamate/inkcanvas/internal/config"
	"github.com/inamate/inkcanvas/internal/discovery"
	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/metrics"
	mw "github.com/inamate/inkcanvas/internal/middleware"
	"github.com/inamate/inkcanvas/internal/stroke"
)

func main() {
	listPeers := flag.Bool("peers", false, "list inkcanvas servers on the local network and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if *listPeers {
		if err := printPeers(os.Stdout, cfg.MDNSService); err != nil {
			slog.Error("browse peers", "error", err)
			os.Exit(1)
		}
		return
	}

	metrics.Init()

	store := board.NewStore(cfg.CanvasOptions()...)

	// The playground starts with the sample strokes so there is something
	// to hit-test against.
	playground, err := store.Create(cfg.Playground)
	if err != nil {
		slog.Error("create playground", "error", err)
		os.Exit(1)
	}
	if _, err := playground.Import(document.NewSamplePaths("server")); err != nil {
		slog.Warn("import sample paths", "error", err)
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.AccessKeyHash)
	authHandler := auth.NewHandler(authService)
	canvasHandler := api.NewHandler(store)

	// Canvas loader for the collaboration hub
	loader := func(canvasID string) (*canvas.Canvas, error) {
		if canvasID == cfg.Playground {
			return store.GetOrCreate(canvasID), nil
		}
		return store.Get(canvasID)
	}
	hub := collab.NewHub(loader)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle(cfg.MetricsPath, promhttp.Handler()).Methods("GET")

	// Protected API routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(authService.AuthMiddleware)
	apiRouter.HandleFunc("/me", authHandler.Me).Methods("GET")
	canvasHandler.Routes(apiRouter)

	// WebSocket endpoint
	wsOrigins := originHosts(cfg.AllowedOrigins)
	r.HandleFunc("/ws/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg, wsOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var advertiser *discovery.Advertiser
	if cfg.MDNSEnabled {
		advertiser, err = discovery.Advertise(cfg.MDNSService, cfg.Port, "inkcanvas", "playground="+cfg.Playground)
		if err != nil {
			slog.Warn("mdns advertise failed", "error", err)
		}
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		if advertiser != nil {
			if err := advertiser.Shutdown(); err != nil {
				slog.Warn("mdns shutdown", "error", err)
			}
		}
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "playground", cfg.Playground,
		"strokeColor", stroke.Color(cfg.DefaultStrokeColor).Hex(), "strokeWidth", cfg.DefaultStrokeWidth)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, cfg *config.Config, origins []string) {
	canvasID := mux.Vars(r)["canvasId"]

	var userID, displayName string
	if token, ok := auth.TokenFromRequest(r); ok {
		user, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, displayName = user.ID, user.DisplayName
	} else if canvasID == cfg.Playground {
		// Playground canvas allows anonymous access
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	collab.ServeWS(w, r, hub, origins, userID, displayName, canvasID)
}

func printPeers(w io.Writer, service string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	peers, err := discovery.Browse(ctx, service, 3*time.Second)
	if err != nil {
		return err
	}
	for _, p := range peers {
		fmt.Fprintf(w, "%s\t%s\n", p.Addr, p.Name)
	}
	return nil
}

// originHosts turns CORS origins into the host patterns the websocket
// handshake matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}
