package ports

import (
	"context"

	"github.com/xrplist/warden/core"
)

// EventPublisher notifies other instances about auth and registry changes.
// Publishing is best effort: a failed publish never fails the operation that
// triggered it.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, role core.Role) error
	PublishAdminAdded(ctx context.Context, address string, role core.Role, addedBy string) error
	PublishAdminRemoved(ctx context.Context, address string, removedBy string) error
}
