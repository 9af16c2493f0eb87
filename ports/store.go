package ports

import (
	"context"

	"github.com/xrplist/warden/core"
)

// ChallengeStore persists authentication challenges. Challenges are inserted
// once, mutated once (used flag) and never deleted by the service; retention
// is an operational concern of the backing store.
type ChallengeStore interface {
	// InsertChallenge stores a new challenge record.
	InsertChallenge(ctx context.Context, challenge *core.Challenge) error

	// GetChallenge returns the challenge with the given id, or
	// core.ErrChallengeNotFound.
	GetChallenge(ctx context.Context, id string) (*core.Challenge, error)

	// ConsumeChallenge atomically flips the used flag from false to true.
	// It returns core.ErrChallengeUsed if the flag was already set and
	// core.ErrChallengeNotFound if no such challenge exists. Of two
	// concurrent callers exactly one succeeds.
	ConsumeChallenge(ctx context.Context, id string) error
}

// AdminStore persists authorized admin wallets. The store, not the caller,
// enforces address uniqueness.
type AdminStore interface {
	// InsertAdmin stores a new admin account, or returns
	// core.ErrDuplicateAdmin if the address is already registered.
	InsertAdmin(ctx context.Context, admin *core.AdminAccount) error

	// GetAdmin returns the account for an address, or core.ErrAdminNotFound.
	GetAdmin(ctx context.Context, address string) (*core.AdminAccount, error)

	// DeleteAdmin removes the account for an address, or returns
	// core.ErrAdminNotFound.
	DeleteAdmin(ctx context.Context, address string) error

	// ListAdmins returns all accounts, newest first.
	ListAdmins(ctx context.Context) ([]core.AdminAccount, error)
}

// AllowlistStore persists allow-list signups, unique per wallet address.
type AllowlistStore interface {
	// InsertEntry stores a new entry, or returns core.ErrDuplicateEntry if
	// the wallet address is already registered.
	InsertEntry(ctx context.Context, entry *core.AllowlistEntry) error

	// ListEntries returns all entries, newest first.
	ListEntries(ctx context.Context) ([]core.AllowlistEntry, error)

	// ClearEntries removes every entry and reports how many were removed.
	ClearEntries(ctx context.Context) (int, error)
}

// CollectionStore persists the tracked NFT collection catalogue.
type CollectionStore interface {
	InsertCollection(ctx context.Context, collection *core.Collection) error

	// ListCollections returns all collections, newest first.
	ListCollections(ctx context.Context) ([]core.Collection, error)

	// DeleteCollection removes a collection by id, or returns
	// core.ErrCollectionNotFound.
	DeleteCollection(ctx context.Context, id string) error

	// ClearCollections removes every collection and reports how many were
	// removed.
	ClearCollections(ctx context.Context) (int, error)
}
