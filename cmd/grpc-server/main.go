package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"streamhub/internal/grpcserver"
	"streamhub/internal/likes"
	"streamhub/internal/logging"
	"streamhub/internal/shelves"
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

	listener, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("grpc listen failed")
	}

	titleRepo := titles.NewRepo(db)
	watchRepo := watch.NewRepo(db)
	shelfSvc := shelves.NewService(titleRepo, watchRepo, likes.NewRepo(db), shelves.ConfigFromSettings(cfg.Shelves))

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor()))
	grpcserver.RegisterCatalogServer(grpcServer, grpcserver.NewServer(titleRepo, watchRepo, shelfSvc))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logging.Info().Msg("shutting down grpc server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}()

	logging.Info().Str("addr", cfg.GRPC.Addr).Msg("grpc server listening")
	if err := grpcServer.Serve(listener); err != nil {
		logging.Fatal().Err(err).Msg("grpc server stopped")
	}
}
