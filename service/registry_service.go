package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/ports"
)

// classicAddressPattern matches the syntactic shape of an XRPL classic
// address. It is a cheap plausibility filter, not a checksum validation.
var classicAddressPattern = regexp.MustCompile(`^r[a-zA-Z0-9]{24,34}$`)

// ValidAddress reports whether s is syntactically plausible as a classic
// address.
func ValidAddress(s string) bool {
	return classicAddressPattern.MatchString(s)
}

// RegistryService manages the allow-list entries and the tracked collection
// catalogue, and renders the downloadable reports.
type RegistryService struct {
	entries     ports.AllowlistStore
	collections ports.CollectionStore
	log         *zap.Logger
}

// NewRegistryService creates a new registry service.
func NewRegistryService(entries ports.AllowlistStore, collections ports.CollectionStore, log *zap.Logger) *RegistryService {
	return &RegistryService{
		entries:     entries,
		collections: collections,
		log:         log,
	}
}

// AddEntry registers a new allow-list signup. This is the one public
// operation of the registry; everything else requires a session.
func (s *RegistryService) AddEntry(ctx context.Context, entry core.AllowlistEntry) (*core.AllowlistEntry, error) {
	if !ValidAddress(entry.WalletAddress) {
		return nil, core.ErrInvalidAddress
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	if err := s.entries.InsertEntry(ctx, &entry); err != nil {
		return nil, err
	}

	s.log.Info("allowlist entry created",
		zap.String("id", entry.ID),
		zap.String("wallet_address", entry.WalletAddress))

	return &entry, nil
}

// ListEntries returns all allow-list entries, newest first.
func (s *RegistryService) ListEntries(ctx context.Context) ([]core.AllowlistEntry, error) {
	return s.entries.ListEntries(ctx)
}

// ClearEntries removes every allow-list entry.
func (s *RegistryService) ClearEntries(ctx context.Context) (int, error) {
	n, err := s.entries.ClearEntries(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("allowlist cleared", zap.Int("deleted", n))
	return n, nil
}

// AddCollection registers a tracked NFT collection.
func (s *RegistryService) AddCollection(ctx context.Context, collection core.Collection) (*core.Collection, error) {
	if !ValidAddress(collection.Issuer) {
		return nil, core.ErrInvalidAddress
	}

	collection.ID = uuid.New().String()
	collection.CreatedAt = time.Now().UTC()
	if err := s.collections.InsertCollection(ctx, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListCollections returns all tracked collections, newest first.
func (s *RegistryService) ListCollections(ctx context.Context) ([]core.Collection, error) {
	return s.collections.ListCollections(ctx)
}

// RemoveCollection deletes a tracked collection by id.
func (s *RegistryService) RemoveCollection(ctx context.Context, id string) error {
	return s.collections.DeleteCollection(ctx, id)
}

// ClearCollections removes every tracked collection.
func (s *RegistryService) ClearCollections(ctx context.Context) (int, error) {
	return s.collections.ClearCollections(ctx)
}

// RenderJSON renders the allow-list as an indented JSON document.
func (s *RegistryService) RenderJSON(ctx context.Context) ([]byte, error) {
	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	type entryDoc struct {
		ID            string `json:"id"`
		FullName      string `json:"full_name"`
		Email         string `json:"email"`
		WalletAddress string `json:"wallet_address"`
		StreetAddress string `json:"street_address"`
		City          string `json:"city"`
		StateProvince string `json:"state_province"`
		ZipPostal     string `json:"zip_postal"`
		Country       string `json:"country"`
		PhoneNumber   string `json:"phone_number,omitempty"`
		CreatedAt     string `json:"created_at"`
	}

	docs := make([]entryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entryDoc{
			ID:            e.ID,
			FullName:      e.FullName,
			Email:         e.Email,
			WalletAddress: e.WalletAddress,
			StreetAddress: e.StreetAddress,
			City:          e.City,
			StateProvince: e.StateProvince,
			ZipPostal:     e.ZipPostal,
			Country:       e.Country,
			PhoneNumber:   e.PhoneNumber,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}

	return json.MarshalIndent(docs, "", "  ")
}

// RenderText renders the allow-list as a human-readable report.
func (s *RegistryService) RenderText(ctx context.Context) (string, error) {
	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("XRPL NFT Whitelist Entries\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	for i, e := range entries {
		fmt.Fprintf(&b, "Entry #%d\n", i+1)
		fmt.Fprintf(&b, "Name: %s\n", e.FullName)
		fmt.Fprintf(&b, "Email: %s\n", e.Email)
		fmt.Fprintf(&b, "Wallet: %s\n", e.WalletAddress)
		fmt.Fprintf(&b, "Address: %s, %s, %s %s, %s\n",
			e.StreetAddress, e.City, e.StateProvince, e.ZipPostal, e.Country)
		if e.PhoneNumber != "" {
			fmt.Fprintf(&b, "Phone: %s\n", e.PhoneNumber)
		}
		fmt.Fprintf(&b, "Registered: %s\n", e.CreatedAt.Format(time.RFC3339))
		b.WriteString(strings.Repeat("-", 80) + "\n\n")
	}

	return b.String(), nil
}

// RenderAddresses renders the bare wallet address list, one per line.
func (s *RegistryService) RenderAddresses(ctx context.Context) (string, error) {
	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return "", err
	}

	addresses := make([]string, 0, len(entries))
	for _, e := range entries {
		addresses = append(addresses, e.WalletAddress)
	}
	return strings.Join(addresses, "\n"), nil
}
