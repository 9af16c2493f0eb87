package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/ports"
)

const (
	TopicLogin        = "warden.login"
	TopicAdminAdded   = "warden.admin.added"
	TopicAdminRemoved = "warden.admin.removed"
)

// LoginEvent is emitted after a successful challenge verification.
type LoginEvent struct {
	Address string    `json:"address"`
	Role    string    `json:"role"`
	At      time.Time `json:"at"`
}

// AdminChangeEvent is emitted when the admin registry is mutated.
type AdminChangeEvent struct {
	Address   string    `json:"address"`
	Role      string    `json:"role,omitempty"`
	ChangedBy string    `json:"changed_by"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher port on a Watermill
// publisher, one topic per event kind.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher wraps an existing Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishLogin(ctx context.Context, address string, role core.Role) error {
	return p.publish(TopicLogin, LoginEvent{
		Address: address,
		Role:    string(role),
		At:      time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishAdminAdded(ctx context.Context, address string, role core.Role, addedBy string) error {
	return p.publish(TopicAdminAdded, AdminChangeEvent{
		Address:   address,
		Role:      string(role),
		ChangedBy: addedBy,
		At:        time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishAdminRemoved(ctx context.Context, address string, removedBy string) error {
	return p.publish(TopicAdminRemoved, AdminChangeEvent{
		Address:   address,
		ChangedBy: removedBy,
		At:        time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// NopPublisher drops every event. It backs deployments without Redis and the
// test suite.
type NopPublisher struct{}

func NewNopPublisher() ports.EventPublisher { return NopPublisher{} }

func (NopPublisher) PublishLogin(ctx context.Context, address string, role core.Role) error {
	return nil
}

func (NopPublisher) PublishAdminAdded(ctx context.Context, address string, role core.Role, addedBy string) error {
	return nil
}

func (NopPublisher) PublishAdminRemoved(ctx context.Context, address string, removedBy string) error {
	return nil
}
