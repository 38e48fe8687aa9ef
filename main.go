package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aman/nft-tracker/pkg/config"
	nftcontroller "github.com/aman/nft-tracker/pkg/controllers"
	nftModel "github.com/aman/nft-tracker/pkg/models"
	nftroutes "github.com/aman/nft-tracker/pkg/routes"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nfts, err := loadNfts(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load nfts", zap.String("source", cfg.Source), zap.Error(err))
	}
	catalog := nftModel.NewCatalog(nfts)
	logger.Info("NFT catalog loaded", zap.String("source", cfg.Source), zap.Int("records", catalog.Len()))

	r := mux.NewRouter()
	nftroutes.NftDetails(r, nftcontroller.New(catalog, logger))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.HTTPAddr), zap.Error(err))
	}

	logger.Info("Listening", zap.String("addr", ln.Addr().String()))
	if err := runServer(ctx, srv, ln, 5*time.Second, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// runServer serves on ln until ctx is done, then returns only after
// in-flight requests have drained or shutdownTimeout has passed.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func loadNfts(ctx context.Context, cfg *config.Config) ([]nftModel.NFT, error) {
	if cfg.Source != config.SourceMongo {
		return nftModel.LoadFile(cfg.NftFile)
	}

	client, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(context.Background())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return nftModel.LoadCollection(ctx, config.GetCollection(client, cfg.DBName, cfg.Collection))
}
