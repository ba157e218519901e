package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"streamhub/internal/auth"
	"streamhub/internal/likes"
	"streamhub/internal/logging"
	"streamhub/internal/media"
	"streamhub/internal/metrics"
	"streamhub/internal/profiles"
	"streamhub/internal/shelves"
	"streamhub/internal/stats"
	synchub "streamhub/internal/sync"
	"streamhub/internal/titles"
	"streamhub/internal/watch"
	"streamhub/pkg/database"
	"streamhub/pkg/utils"
)

func main() {
	cfg := utils.MustLoad()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	store, err := media.NewFilesystemStore(cfg.Media.Dir)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Media.Dir).Msg("media store init failed")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(), metrics.GinMiddleware())
	_ = router.SetTrustedProxies(cfg.HTTP.TrustedProxies)

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	router.GET("/metrics", metrics.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		st := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": st.TCPClients,
				"ws_clients":  st.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": st.TCPClients,
			"ws_clients":  st.WSClients,
		})
	})

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTTTL,
	}

	userRepo := auth.NewRepo(db)
	profileRepo := profiles.NewRepo(db)
	titleRepo := titles.NewRepo(db)
	watchRepo := watch.NewRepo(db)
	likeRepo := likes.NewRepo(db)

	mediaHandler := media.NewHandler(media.NewRepo(db), store)
	mediaHandler.RegisterServeRoutes(router)

	api := router.Group("/api")
	auth.NewHandler(userRepo, tokens).RegisterRoutes(api)

	protected := api.Group("", auth.AuthMiddleware(tokens, userRepo))
	profiles.NewHandler(profileRepo, userRepo, tokens).RegisterRoutes(protected)
	titles.NewHandler(titleRepo, watchRepo).RegisterRoutes(protected)
	watch.NewHandler(watchRepo, hub).RegisterRoutes(protected)
	likes.NewHandler(likeRepo, hub).RegisterRoutes(protected)
	stats.NewHandler(watchRepo, profileRepo, titleRepo).RegisterRoutes(protected)
	mediaHandler.RegisterUploadRoutes(protected)

	shelfSvc := shelves.NewService(titleRepo, watchRepo, likeRepo, shelves.ConfigFromSettings(cfg.Shelves))
	shelves.NewHandler(shelfSvc).RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if cfg.Sync.TCPAddr != "" {
		tcpSrv := synchub.NewServer(cfg.Sync.TCPAddr, hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logging.Info().Str("addr", cfg.HTTP.Addr).Msg("http api server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("server error")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown error")
	}

	wg.Wait()
	logging.Info().Msg("servers stopped")
}
