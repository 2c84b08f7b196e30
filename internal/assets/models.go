package assets

// ChainAsset is one registered asset as read from a register contract.
type ChainAsset struct {
	ID           uint64 `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	ContentHash  string `json:"contentHash" yaml:"contentHash"`
	MetadataJSON string `json:"metadataJSON" yaml:"metadataJSON"`
	Owner        string `json:"owner" yaml:"owner"`
	Timestamp    int64  `json:"timestamp" yaml:"timestamp"` // seconds since epoch
}
