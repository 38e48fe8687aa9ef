package nftcontroller

import (
	"encoding/json"
	"net/http"

	nftModel "github.com/aman/nft-tracker/pkg/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const AccountAddressParam = "account_address"

type Controller struct {
	catalog *nftModel.Catalog
	logger  *zap.Logger
}

func New(catalog *nftModel.Catalog, logger *zap.Logger) *Controller {
	return &Controller{catalog: catalog, logger: logger}
}

// GetNfts lists every NFT, or only those of account_address when the
// parameter is present in the query string, even with an empty value.
func (c *Controller) GetNfts(w http.ResponseWriter, r *http.Request) {
	owner := nftModel.AnyOwner()
	if values, ok := r.URL.Query()[AccountAddressParam]; ok {
		owner = nftModel.OwnedBy(values[0])
	}
	c.writeNfts(w, c.catalog.List(owner))
}

func (c *Controller) GetWalletNfts(w http.ResponseWriter, r *http.Request) {
	walletAddress := mux.Vars(r)["walletAddress"]
	c.writeNfts(w, c.catalog.List(nftModel.OwnedBy(walletAddress)))
}

func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"records": c.catalog.Len(),
	}); err != nil {
		c.logger.Error("Error encoding health", zap.Error(err))
	}
}

func (c *Controller) writeNfts(w http.ResponseWriter, nfts []nftModel.NFT) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(nfts); err != nil {
		c.logger.Error("Error encoding nfts", zap.Error(err), zap.Int("count", len(nfts)))
	}
}
