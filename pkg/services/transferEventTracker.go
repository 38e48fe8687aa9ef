package trackingService

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	nftModel "github.com/aman/nft-tracker/pkg/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var transferEventHash = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var ErrNotTransfer = errors.New("log is not an ERC-721 Transfer event")

// ChainReader is the part of ethclient.Client the builder needs.
type ChainReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// SnapshotBuilder turns the Transfer history of a set of ERC-721 contracts
// into the static record list served by the API.
type SnapshotBuilder struct {
	client        ChainReader
	contractAddrs []common.Address
	logger        *zap.Logger
}

func NewSnapshotBuilder(client ChainReader, contracts []string, logger *zap.Logger) (*SnapshotBuilder, error) {
	contractAddrs := make([]common.Address, 0, len(contracts))
	for _, addr := range contracts {
		if !common.IsHexAddress(addr) {
			logger.Warn("Invalid contract address", zap.String("address", addr))
			continue
		}
		contractAddrs = append(contractAddrs, common.HexToAddress(addr))
	}
	if len(contractAddrs) == 0 {
		return nil, errors.New("no valid contract addresses")
	}

	return &SnapshotBuilder{
		client:        client,
		contractAddrs: contractAddrs,
		logger:        logger,
	}, nil
}

// Build reads Transfer logs from fromBlock up to the current head.
func (b *SnapshotBuilder) Build(ctx context.Context, fromBlock int64) ([]nftModel.NFT, error) {
	header, err := b.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block header: %w", err)
	}

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   header.Number,
		Addresses: b.contractAddrs,
		Topics:    [][]common.Hash{{transferEventHash}},
	}

	logs, err := b.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Transfer events: %w", err)
	}

	nfts, skipped := b.fold(logs)
	b.logger.Info("Fetched Transfer events",
		zap.Int64("fromBlock", fromBlock),
		zap.String("toBlock", header.Number.String()),
		zap.Int("logs", len(logs)),
		zap.Int("skipped", skipped),
		zap.Int("records", len(nfts)))

	return nfts, nil
}

type tokenKey struct {
	contract common.Address
	tokenID  common.Hash
}

// fold keeps one record per token in first-seen order; the latest transfer
// decides the owner. It also reports how many logs it could not use.
func (b *SnapshotBuilder) fold(logs []types.Log) ([]nftModel.NFT, int) {
	index := make(map[tokenKey]int)
	nfts := []nftModel.NFT{}
	skipped := 0

	for _, delog := range logs {
		if delog.Removed {
			continue
		}
		to, tokenID, err := decodeTransferLog(delog)
		if err != nil {
			b.logger.Warn("Skipping Transfer log", zap.String("txHash", delog.TxHash.Hex()), zap.Error(err))
			skipped++
			continue
		}

		key := tokenKey{contract: delog.Address, tokenID: common.BigToHash(tokenID)}
		if i, ok := index[key]; ok {
			nfts[i].OwnerAddress = to.Hex()
			continue
		}
		index[key] = len(nfts)
		id := tokenID.String()
		nfts = append(nfts, nftModel.NFT{
			NftID:           id,
			Name:            "#" + id,
			OwnerAddress:    to.Hex(),
			ContractAddress: delog.Address.Hex(),
		})
	}
	return nfts, skipped
}

// decodeTransferLog reads the recipient and token id. ERC-721 indexes all
// three Transfer arguments, so they live in the topics.
func decodeTransferLog(delog types.Log) (common.Address, *big.Int, error) {
	if len(delog.Topics) != 4 || delog.Topics[0] != transferEventHash {
		return common.Address{}, nil, ErrNotTransfer
	}
	to := common.BytesToAddress(delog.Topics[2].Bytes())
	tokenID := delog.Topics[3].Big()
	return to, tokenID, nil
}
