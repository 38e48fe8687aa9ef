package nftModel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LoadFile reads a JSON array of records.
func LoadFile(path string) ([]NFT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var nfts []NFT
	if err := json.Unmarshal(data, &nfts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if nfts == nil {
		nfts = []NFT{}
	}
	return nfts, nil
}

func SaveFile(path string, nfts []NFT) error {
	if nfts == nil {
		nfts = []NFT{}
	}
	data, err := json.MarshalIndent(nfts, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// storedNFT carries the position of a record so the collection can be read
// back in the order it was written, and the snapshot run that wrote it.
type storedNFT struct {
	Seq      int    `bson:"seq"`
	Snapshot string `bson:"snapshot"`
	NFT      `bson:",inline"`
}

// LoadCollection reads every document of coll once, ordered by seq.
func LoadCollection(ctx context.Context, coll *mongo.Collection) ([]NFT, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "seq", Value: 1}})

	cursor, err := coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	nfts := []NFT{}
	for cursor.Next(ctx) {
		var doc storedNFT
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		nfts = append(nfts, doc.NFT)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return nfts, nil
}

// SaveCollection makes coll hold exactly nfts, in order. Each record
// replaces the document with the same contract and token id, then documents
// left over from earlier snapshots are removed.
func SaveCollection(ctx context.Context, coll *mongo.Collection, nfts []NFT) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "contractAddress", Value: 1}, {Key: "nftId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	snapshot := primitive.NewObjectID().Hex()
	opts := options.Replace().SetUpsert(true)
	for i, nft := range nfts {
		filter := bson.M{"contractAddress": nft.ContractAddress, "nftId": nft.NftID}
		doc := storedNFT{Seq: i, Snapshot: snapshot, NFT: nft}
		if _, err := coll.ReplaceOne(ctx, filter, doc, opts); err != nil {
			return fmt.Errorf("failed to upsert nft %s: %w", nft.NftID, err)
		}
	}

	if _, err := coll.DeleteMany(ctx, bson.M{"snapshot": bson.M{"$ne": snapshot}}); err != nil {
		return fmt.Errorf("failed to remove stale nfts: %w", err)
	}
	return nil
}
