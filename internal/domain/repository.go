package domain

import (
	"context"

	"salescore/internal/core/entity"
	"salescore/internal/core/id"
	"salescore/internal/core/scope"
)

// --- Repository Interfaces ---

// CatalogRepository defines CRUD operations for catalog entities.
// Every method takes an explicit scope; repositories apply the company
// filter unconditionally and never leak records across companies.
type CatalogRepository[T entity.Validatable] interface {
	// Create inserts a new entity
	Create(ctx context.Context, sc scope.Scope, entity T) error

	// GetByID retrieves entity by ID
	GetByID(ctx context.Context, sc scope.Scope, id id.ID) (T, error)

	// GetByCode retrieves entity by code (unique within a company)
	GetByCode(ctx context.Context, sc scope.Scope, code string) (T, error)

	// Update modifies existing entity (with optimistic locking)
	Update(ctx context.Context, sc scope.Scope, entity T) error

	// SetDeletionMark sets or clears the soft-delete mark.
	// Hard delete is intentionally not exposed.
	SetDeletionMark(ctx context.Context, sc scope.Scope, id id.ID, marked bool) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, sc scope.Scope, filter ListFilter) (ListResult[T], error)

	// Exists checks if entity with given ID exists
	Exists(ctx context.Context, sc scope.Scope, id id.ID) (bool, error)

	// ExistsByCode checks if entity with given code exists
	ExistsByCode(ctx context.Context, sc scope.Scope, code string) (bool, error)
}

// DocumentRepository defines persistence operations for documents.
// Documents are never deleted; lifecycle ends via a terminal status.
type DocumentRepository[T entity.Validatable] interface {
	// Create inserts a new document with its lines
	Create(ctx context.Context, sc scope.Scope, doc T) error

	// GetByID retrieves a document with its lines
	GetByID(ctx context.Context, sc scope.Scope, id id.ID) (T, error)

	// GetByIDForUpdate retrieves a document with a row lock.
	// Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, sc scope.Scope, id id.ID) (T, error)

	// Update modifies a document and replaces its lines
	// (with optimistic locking)
	Update(ctx context.Context, sc scope.Scope, doc T) error

	// List retrieves documents with filtering and pagination
	List(ctx context.Context, sc scope.Scope, filter ListFilter) (ListResult[T], error)

	// Exists checks if a document with given ID exists
	Exists(ctx context.Context, sc scope.Scope, id id.ID) (bool, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, sc scope.Scope, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, sc scope.Scope, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, sc, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}
