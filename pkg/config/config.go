package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

var ErrMissingEnv = errors.New("required environment variable is not set")

type Config struct {
	HTTPAddr      string
	Source        string
	NftFile       string
	MongoURI      string
	DBName        string
	Collection    string
	RPCEndpoint   string
	ContractAddrs []string
	FromBlock     int64
	LogLevel      string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, which keeps it testable
// without touching the process environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:    valueOr(getenv("HTTP_ADDR"), "localhost:3000"),
		Source:      strings.ToLower(valueOr(getenv("NFT_SOURCE"), SourceFile)),
		NftFile:     valueOr(getenv("NFT_FILE"), "data/nfts.json"),
		MongoURI:    getenv("MONGO_URI"),
		DBName:      getenv("DB_NAME"),
		Collection:  valueOr(getenv("NFT_COLLECTION"), "NFT"),
		RPCEndpoint: getenv("ETH_RPC_ENDPOINT"),
		LogLevel:    valueOr(getenv("LOG_LEVEL"), "info"),
	}

	switch cfg.Source {
	case SourceFile:
	case SourceMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI: %w", ErrMissingEnv)
		}
		if cfg.DBName == "" {
			return nil, fmt.Errorf("DB_NAME: %w", ErrMissingEnv)
		}
	default:
		return nil, fmt.Errorf("unknown NFT_SOURCE %q", cfg.Source)
	}

	if raw := getenv("CONTRACT_ADDRESSES"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.ContractAddrs); err != nil {
			return nil, fmt.Errorf("failed to parse CONTRACT_ADDRESSES: %w", err)
		}
	}

	if raw := getenv("FROM_BLOCK"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse FROM_BLOCK: %w", err)
		}
		cfg.FromBlock = n
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// RequireChain checks the settings the snapshot tool needs to read the chain.
func (c *Config) RequireChain() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("ETH_RPC_ENDPOINT: %w", ErrMissingEnv)
	}
	if len(c.ContractAddrs) == 0 {
		return fmt.Errorf("CONTRACT_ADDRESSES: %w", ErrMissingEnv)
	}
	return nil
}

func NewLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func ConnectDB(ctx context.Context, cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	return client, nil
}

func GetCollection(client *mongo.Client, dbName, name string) *mongo.Collection {
	return client.Database(dbName).Collection(name)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
