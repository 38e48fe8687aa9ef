package nftModel

type NFT struct {
	NftID           string `json:"nftId" bson:"nftId"`
	Name            string `json:"name" bson:"name"`
	OwnerAddress    string `json:"owner" bson:"owner"`
	ContractAddress string `json:"contractAddress,omitempty" bson:"contractAddress"`
	TokenUri        string `json:"tokenUri,omitempty" bson:"tokenUri,omitempty"`
	Image           string `json:"image,omitempty" bson:"image,omitempty"`
}

// OwnerFilter is an optional owner address. The zero value matches any owner.
type OwnerFilter struct {
	address string
	set     bool
}

func AnyOwner() OwnerFilter {
	return OwnerFilter{}
}

// OwnedBy filters on address. The empty string is a real value and only
// matches records whose owner is empty.
func OwnedBy(address string) OwnerFilter {
	return OwnerFilter{address: address, set: true}
}

func (f OwnerFilter) Address() (string, bool) {
	return f.address, f.set
}

func (f OwnerFilter) Matches(nft NFT) bool {
	return !f.set || nft.OwnerAddress == f.address
}

// ListNfts returns the records owned by owner, in their original order. With
// no owner set it returns every record. The result is never nil.
func ListNfts(owner OwnerFilter, records []NFT) []NFT {
	list := make([]NFT, 0, len(records))
	for _, nft := range records {
		if owner.Matches(nft) {
			list = append(list, nft)
		}
	}
	return list
}

// Catalog is the read-only record table served by the API. It is built once
// at startup and safe for concurrent use.
type Catalog struct {
	records []NFT
}

func NewCatalog(records []NFT) *Catalog {
	frozen := make([]NFT, len(records))
	copy(frozen, records)
	return &Catalog{records: frozen}
}

func (c *Catalog) List(owner OwnerFilter) []NFT {
	return ListNfts(owner, c.records)
}

func (c *Catalog) Len() int {
	return len(c.records)
}
