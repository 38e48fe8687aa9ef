// Command snapshot builds the NFT record source from on-chain Transfer events.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman/nft-tracker/pkg/config"
	nftModel "github.com/aman/nft-tracker/pkg/models"
	trackingService "github.com/aman/nft-tracker/pkg/services"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireChain(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		logger.Fatal("Error connecting to Ethereum client", zap.Error(err))
	}
	defer client.Close()

	builder, err := trackingService.NewSnapshotBuilder(client, cfg.ContractAddrs, logger)
	if err != nil {
		logger.Fatal("Failed to initialize snapshot builder", zap.Error(err))
	}

	nfts, err := builder.Build(ctx, cfg.FromBlock)
	if err != nil {
		logger.Fatal("Failed to build snapshot", zap.Error(err))
	}

	if err := save(ctx, cfg, nfts); err != nil {
		logger.Fatal("Failed to save snapshot", zap.String("source", cfg.Source), zap.Error(err))
	}
	logger.Info("Snapshot written", zap.String("source", cfg.Source), zap.Int("records", len(nfts)))
}

func save(ctx context.Context, cfg *config.Config, nfts []nftModel.NFT) error {
	if cfg.Source != config.SourceMongo {
		return nftModel.SaveFile(cfg.NftFile, nfts)
	}

	client, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	return nftModel.SaveCollection(ctx, config.GetCollection(client, cfg.DBName, cfg.Collection), nfts)
}
