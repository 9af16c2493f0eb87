package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/ports"
)

// AdminService manages the registry of authorized admin wallets. Every
// operation takes the caller's resolved identity and passes through
// requireSuperAdmin, the single policy chokepoint for admin management.
type AdminService struct {
	admins ports.AdminStore
	events ports.EventPublisher
	log    *zap.Logger
}

// NewAdminService creates a new admin registry service.
func NewAdminService(admins ports.AdminStore, events ports.EventPublisher, log *zap.Logger) *AdminService {
	return &AdminService{
		admins: admins,
		events: events,
		log:    log,
	}
}

// Bootstrap ensures the configured super-admin wallet exists. It is
// idempotent and safe to call on every process start; the bootstrap row has
// no AddedBy.
func (s *AdminService) Bootstrap(ctx context.Context, address string) error {
	_, err := s.admins.GetAdmin(ctx, address)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrAdminNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	admin := &core.AdminAccount{
		ID:      uuid.New().String(),
		Address: address,
		Role:    core.RoleSuperAdmin,
	}
	if err := s.admins.InsertAdmin(ctx, admin); err != nil {
		// A concurrent replica may have won the insert; the invariant
		// (exactly one row for the address) still holds.
		if errors.Is(err, core.ErrDuplicateAdmin) {
			return nil
		}
		return fmt.Errorf("failed to bootstrap super admin: %w", err)
	}

	s.log.Info("bootstrapped super admin wallet", zap.String("address", address))
	return nil
}

// IsSuperAdmin reports whether the address holds the super-admin role.
func (s *AdminService) IsSuperAdmin(ctx context.Context, address string) (bool, error) {
	admin, err := s.admins.GetAdmin(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrAdminNotFound) {
			return false, nil
		}
		return false, err
	}
	switch admin.Role {
	case core.RoleSuperAdmin:
		return true, nil
	case core.RoleAdmin:
		return false, nil
	default:
		return false, core.ErrInvalidRole
	}
}

// Add registers a new admin wallet on behalf of caller.
func (s *AdminService) Add(ctx context.Context, caller core.Identity, address string, role core.Role) (*core.AdminAccount, error) {
	if err := s.requireSuperAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, core.ErrInvalidRole
	}

	admin := &core.AdminAccount{
		ID:      uuid.New().String(),
		Address: address,
		Role:    role,
		AddedBy: caller.Address,
	}
	if err := s.admins.InsertAdmin(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.events.PublishAdminAdded(ctx, address, role, caller.Address); err != nil {
		s.log.Warn("failed to publish admin added event", zap.Error(err))
	}

	s.log.Info("admin wallet added",
		zap.String("address", address),
		zap.String("role", string(role)),
		zap.String("added_by", caller.Address))

	return admin, nil
}

// Remove deletes an admin wallet on behalf of caller. Super-admin rows can
// never be removed, regardless of who asks.
func (s *AdminService) Remove(ctx context.Context, caller core.Identity, address string) error {
	if err := s.requireSuperAdmin(ctx, caller); err != nil {
		return err
	}

	admin, err := s.admins.GetAdmin(ctx, address)
	if err != nil {
		return err
	}
	if admin.Role == core.RoleSuperAdmin {
		return core.ErrCannotRemoveSuperAdmin
	}

	if err := s.admins.DeleteAdmin(ctx, address); err != nil {
		return err
	}

	if err := s.events.PublishAdminRemoved(ctx, address, caller.Address); err != nil {
		s.log.Warn("failed to publish admin removed event", zap.Error(err))
	}

	s.log.Info("admin wallet removed",
		zap.String("address", address),
		zap.String("removed_by", caller.Address))

	return nil
}

// List returns all admin wallets, newest first.
func (s *AdminService) List(ctx context.Context, caller core.Identity) ([]core.AdminAccount, error) {
	if err := s.requireSuperAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return s.admins.ListAdmins(ctx)
}

// requireSuperAdmin is the authorization gate for admin management. The role
// is re-checked against the store rather than trusted from the assertion, so
// a demoted or removed admin loses privileges as soon as the registry says
// so. The switch is exhaustive over core.Role.
func (s *AdminService) requireSuperAdmin(ctx context.Context, caller core.Identity) error {
	admin, err := s.admins.GetAdmin(ctx, caller.Address)
	if err != nil {
		if errors.Is(err, core.ErrAdminNotFound) {
			return core.ErrForbidden
		}
		return err
	}
	switch admin.Role {
	case core.RoleSuperAdmin:
		return nil
	case core.RoleAdmin:
		return core.ErrForbidden
	default:
		return core.ErrInvalidRole
	}
}
