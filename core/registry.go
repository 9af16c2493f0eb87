package core

import "time"

// AllowlistEntry is a public signup for the NFT allow-list. Wallet addresses
// are unique across the list.
type AllowlistEntry struct {
	ID            string
	FullName      string
	Email         string
	WalletAddress string
	StreetAddress string
	City          string
	StateProvince string
	ZipPostal     string
	Country       string
	PhoneNumber   string
	CreatedAt     time.Time
}

// Collection is a tracked NFT collection, identified by issuer and optional
// taxon. The catalogue is descriptive only; no ledger lookups happen here.
type Collection struct {
	ID        string
	Name      string
	Issuer    string
	Taxon     *uint32
	CreatedAt time.Time
}
