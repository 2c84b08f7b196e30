package analytics

import (
	"github.com/hakichain/haki-analytics/internal/assets"
	"github.com/hakichain/haki-analytics/internal/collection"
	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/registry"
	"github.com/hakichain/haki-analytics/internal/shared"
)

type AssetRow struct {
	ID         uint64 `json:"id" yaml:"id"`
	Initial    string `json:"initial" yaml:"initial"`
	Title      string `json:"title" yaml:"title"`
	Hash       string `json:"hash" yaml:"hash"`
	Registered string `json:"registered" yaml:"registered"`
}

type RecordRow struct {
	ID           int64  `json:"id" yaml:"id"`
	MetadataHash string `json:"metadataHash" yaml:"metadataHash"`
	Owner        string `json:"owner" yaml:"owner"`
	RegisteredAt string `json:"registeredAt" yaml:"registeredAt"`
}

// Section is one rendered table: the filtered rows plus the collection's state.
type Section[R any] struct {
	Title string           `json:"title" yaml:"title"`
	Empty string           `json:"emptyMessage" yaml:"emptyMessage"`
	State collection.State `json:"state" yaml:"state"`
	Total int              `json:"total" yaml:"total"`
	Rows  []R              `json:"rows" yaml:"rows"`
	Error string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// View is the dashboard as rendered for one query.
type View struct {
	Query     string `json:"query" yaml:"query"`
	Wallet    string `json:"wallet" yaml:"wallet"`
	Connected bool   `json:"connected" yaml:"connected"`
	Loading   bool   `json:"loading" yaml:"loading"`

	WalletError   string `json:"walletError,omitempty" yaml:"walletError,omitempty"`
	AssetError    string `json:"assetError,omitempty" yaml:"assetError,omitempty"`
	RegistryError string `json:"registryError,omitempty" yaml:"registryError,omitempty"`

	Organization Section[AssetRow]  `json:"organization" yaml:"organization"`
	User         Section[AssetRow]  `json:"user" yaml:"user"`
	Records      Section[RecordRow] `json:"records" yaml:"records"`
}

const (
	TitleOrganization = "Organization IP Assets on Story"
	TitleUser         = "User IP Assets on Story"
	TitleRecords      = "ICP Metadata Registry"

	EmptyOrganization = "No organization IP assets found."
	EmptyUser         = "No user IP assets found."
	EmptyRecords      = "No ICP records found."
)

func buildView(
	f Formatter,
	query, wallet string,
	walletErr error,
	org, user collection.Snapshot[assets.ChainAsset],
	records collection.Snapshot[registry.Record],
) View {
	v := View{
		Query:     query,
		Wallet:    wallet,
		Connected: wallet != "",
		Loading:   org.State == collection.Loading || user.State == collection.Loading || records.State == collection.Loading,

		Organization: assetSection(f, TitleOrganization, EmptyOrganization, org, query),
		User:         assetSection(f, TitleUser, EmptyUser, user, query),
		Records:      recordSection(f, records, query),
	}

	if walletErr != nil {
		v.WalletError = shared.UserMessage(walletErr)
	}
	// the two on-chain sources share one inline message
	switch {
	case v.Organization.Error != "":
		v.AssetError = v.Organization.Error
	case v.User.Error != "":
		v.AssetError = v.User.Error
	}
	v.RegistryError = v.Records.Error
	return v
}

func assetSection(f Formatter, title, empty string, snap collection.Snapshot[assets.ChainAsset], query string) Section[AssetRow] {
	filtered := FilterAssets(snap.Items, query)
	rows := make([]AssetRow, 0, len(filtered))
	for _, a := range filtered {
		rows = append(rows, AssetRow{
			ID:         a.ID,
			Initial:    Initial(a.Title),
			Title:      a.Title,
			Hash:       a.ContentHash,
			Registered: f.ChainTimestamp(a.Timestamp),
		})
	}

	s := Section[AssetRow]{
		Title: title,
		Empty: empty,
		State: snap.State,
		Total: len(snap.Items),
		Rows:  rows,
	}
	if snap.Err != nil {
		s.Error = shared.MsgAssetsFailed
	}
	return s
}

func recordSection(f Formatter, snap collection.Snapshot[registry.Record], query string) Section[RecordRow] {
	filtered := FilterRecords(snap.Items, query)
	rows := make([]RecordRow, 0, len(filtered))
	for _, r := range filtered {
		rows = append(rows, RecordRow{
			ID:           r.ID,
			MetadataHash: orDefault(r.MetadataHash, constants.MissingHash),
			Owner:        orDefault(r.Owner, constants.MissingOwner),
			RegisteredAt: f.RegisteredAt(r.RegisteredAt),
		})
	}

	s := Section[RecordRow]{
		Title: TitleRecords,
		Empty: EmptyRecords,
		State: snap.State,
		Total: len(snap.Items),
		Rows:  rows,
	}
	if snap.Err != nil {
		s.Error = shared.MsgRegistryFailed
		// an errored registry renders no rows
		s.Rows = []RecordRow{}
	}
	return s
}

// orDefault substitutes def only for a missing value; an empty string is kept.
func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

