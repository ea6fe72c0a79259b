// Package store is the owner-scoped record store behind every mini-app
// collection. Every call is filtered by owner_id; a record owned by someone
// else is reported exactly like a record that does not exist.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrUpstream = errors.New("record store failure")
)

// Scope narrows a query, in the same shape as gorm's Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Patch maps model field names (ClientID) or column names (client_id) to
// new values. gorm resolves either form against the model schema, so the
// Go-side name never leaks into SQL and the column name never leaks out.
type Patch map[string]interface{}

// Store gives CRUD access to one collection of T.
type Store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// WithTx returns the same store bound to a transaction.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	return &Store[T]{db: tx}
}

func (s *Store[T]) scoped(ctx context.Context, ownerID string) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T)).Scopes(owner.ForOwner(ownerID))
}

// List returns the owner's records matching scopes.
func (s *Store[T]) List(ctx context.Context, ownerID string, scopes ...Scope) ([]T, error) {
	out := make([]T, 0)
	if ownerID == "" {
		return out, nil
	}
	if err := s.scoped(ctx, ownerID).Scopes(scopes...).Find(&out).Error; err != nil {
		return nil, upstream("list", err)
	}
	return out, nil
}

// Count returns how many of the owner's records match scopes.
func (s *Store[T]) Count(ctx context.Context, ownerID string, scopes ...Scope) (int64, error) {
	var n int64
	if ownerID == "" {
		return 0, nil
	}
	if err := s.scoped(ctx, ownerID).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, upstream("count", err)
	}
	return n, nil
}

// Get returns one record or ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, ownerID string, id uuid.UUID) (*T, error) {
	if ownerID == "" || id == uuid.Nil {
		return nil, ErrNotFound
	}
	var rec T
	err := s.scoped(ctx, ownerID).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("get", err)
	}
	return &rec, nil
}

// Create inserts rec. The caller sets its owner.
func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return upstream("create", err)
	}
	return nil
}

// Update applies patch to one record in a single statement and returns the
// stored result. updated_at is refreshed by gorm for models that have it.
func (s *Store[T]) Update(ctx context.Context, ownerID string, id uuid.UUID, patch Patch) (*T, error) {
	if ownerID == "" || id == uuid.Nil {
		return nil, ErrNotFound
	}
	if len(patch) == 0 {
		return s.Get(ctx, ownerID, id)
	}

	values := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		values[k] = v
	}

	res := s.scoped(ctx, ownerID).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, upstream("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, ownerID, id)
}

// UpdateWhere applies patch to one record only while cond still holds, so a
// concurrent transition cannot be applied twice. It reports whether the
// record changed.
func (s *Store[T]) UpdateWhere(ctx context.Context, ownerID string, id uuid.UUID, cond Scope, patch Patch) (bool, error) {
	if ownerID == "" || id == uuid.Nil {
		return false, nil
	}
	values := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		values[k] = v
	}
	res := s.scoped(ctx, ownerID).Where("id = ?", id).Scopes(cond).Updates(values)
	if res.Error != nil {
		return false, upstream("update", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes one record and reports whether anything was removed.
func (s *Store[T]) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	if ownerID == "" || id == uuid.Nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Scopes(owner.ForOwner(ownerID)).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, upstream("delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteWhere removes every owner record matching scopes. At least one scope
// is required.
func (s *Store[T]) DeleteWhere(ctx context.Context, ownerID string, scopes ...Scope) (int64, error) {
	if ownerID == "" {
		return 0, nil
	}
	if len(scopes) == 0 {
		return 0, fmt.Errorf("%w: delete without a filter", ErrUpstream)
	}
	res := s.db.WithContext(ctx).Scopes(owner.ForOwner(ownerID)).Scopes(scopes...).Delete(new(T))
	if res.Error != nil {
		return 0, upstream("delete", res.Error)
	}
	return res.RowsAffected, nil
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
