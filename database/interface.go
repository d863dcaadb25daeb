package database

import (
	"time"

	model "trivia-token-service/models"
)

// Database interface for different database implementations.
// Every method that changes more than one record is atomic with respect to
// concurrent callers of the same implementation.
type Database interface {
	// Catalog operations
	CreateCatalogItems(items []*model.CatalogItem) error
	GetCatalogItem(id string) (*model.CatalogItem, error)
	// ReserveCatalogItem flips one available item of the category to reserved, ErrNoneAvailable when the pool is empty
	ReserveCatalogItem(categoryID string, at time.Time) (*model.CatalogItem, error)
	// ReleaseCatalogItem reserved -> available, ErrInvalidState otherwise
	ReleaseCatalogItem(id string) error
	// MarkCatalogItemMinted reserved -> minted; already minted is a no-op
	MarkCatalogItemMinted(id string, at time.Time) error
	ListStaleReservations(before time.Time) ([]*model.CatalogItem, error)
	CountAvailableCatalogItems(categoryID string) (int64, error)

	// Eligibility operations
	CreateEligibility(e *model.Eligibility) error
	GetEligibility(id string) (*model.Eligibility, error)
	// ConsumeEligibility active -> used when at is before expiry. An active record past expiry is
	// persisted as expired. Any refusal returns the current record together with ErrStatusConflict.
	ConsumeEligibility(id string, at time.Time) (*model.Eligibility, error)
	// RestoreEligibility used -> active for a claim that produced nothing; ErrStatusConflict otherwise
	RestoreEligibility(id string) (*model.Eligibility, error)
	ListEligibilitiesByPlayer(playerID string) ([]*model.Eligibility, error)

	// Asset identifier claims
	ClaimAssetIdentifier(claim *model.AssetClaim) error

	// Ownership operations
	CreateOwnershipRecord(record *model.OwnershipRecord) error
	GetOwnershipRecordByIdentifier(identifier string) (*model.OwnershipRecord, error)
	ListOwnershipRecordsByOwner(ownerKey string) ([]*model.OwnershipRecord, error)
	// LockOwnershipRecords held -> locked for every identifier or none, ErrRecordUnavailable otherwise
	LockOwnershipRecords(forgeID string, identifiers []string) error
	// UnlockOwnershipRecords locked by forgeID -> held
	UnlockOwnershipRecords(forgeID string, identifiers []string) error
	// BurnOwnershipRecords locked by forgeID -> burned; already burned by forgeID is a no-op
	BurnOwnershipRecords(forgeID string, identifiers []string) error

	// Mint operations
	CreateMintOperation(op *model.MintOperation) error
	GetMintOperation(id string) (*model.MintOperation, error)
	UpdateMintOperation(op *model.MintOperation) error
	ListActiveMintOperations() ([]*model.MintOperation, error)

	// Forge operations
	// CreateForgeOperation refuses with ErrRecordUnavailable when an input is claimed by another non-terminal forge
	CreateForgeOperation(op *model.ForgeOperation) error
	GetForgeOperation(id string) (*model.ForgeOperation, error)
	// UpdateForgeOperation persists op; input claims are dropped once op is terminal
	UpdateForgeOperation(op *model.ForgeOperation) error
	ListForgeOperationsByStatus(statuses ...model.ForgeStatus) ([]*model.ForgeOperation, error)

	// General operations
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypePostgres DBType = "postgres"
	DBTypePebble   DBType = "pebble"
)

// NewDatabase create database with specified type
func NewDatabase(dbType DBType, config interface{}) (Database, error) {
	switch dbType {
	case DBTypePebble:
		return NewPebbleDatabase(config)
	case DBTypePostgres:
		return NewPostgresDatabase(config)
	default:
		return nil, ErrUnsupportedDBType
	}
}
