package nftroutes

import (
	nftcontroller "github.com/aman/nft-tracker/pkg/controllers"
	"github.com/gorilla/mux"
)

var NftDetails = func(router *mux.Router, c *nftcontroller.Controller) {
	router.HandleFunc("/nft", c.GetNfts).Methods("GET")
	router.HandleFunc("/nft/{walletAddress}", c.GetWalletNfts).Methods("GET")
	router.HandleFunc("/healthz", c.Health).Methods("GET")
}
