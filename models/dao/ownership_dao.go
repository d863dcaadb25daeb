package dao

import (
	"trivia-token-service/database"
	model "trivia-token-service/models"
)

// OwnershipDAO ownership record and identifier claim data access object
type OwnershipDAO struct {
	db database.Database
}

// NewOwnershipDAO create ownership DAO instance
func NewOwnershipDAO(db database.Database) *OwnershipDAO {
	return &OwnershipDAO{db: db}
}

// ClaimIdentifier reserve an asset identifier for an operation
func (dao *OwnershipDAO) ClaimIdentifier(identifier, operationID string) error {
	return dao.db.ClaimAssetIdentifier(&model.AssetClaim{
		AssetIdentifier: identifier,
		OperationID:     operationID,
	})
}

// Create insert ownership record
func (dao *OwnershipDAO) Create(record *model.OwnershipRecord) error {
	return dao.db.CreateOwnershipRecord(record)
}

// GetByIdentifier get ownership record, nil when absent
func (dao *OwnershipDAO) GetByIdentifier(identifier string) (*model.OwnershipRecord, error) {
	record, err := dao.db.GetOwnershipRecordByIdentifier(identifier)
	if err == database.ErrNotFound {
		return nil, nil
	}
	return record, err
}

// ListByOwner every record of an owner
func (dao *OwnershipDAO) ListByOwner(ownerKey string) ([]*model.OwnershipRecord, error) {
	return dao.db.ListOwnershipRecordsByOwner(ownerKey)
}

// ListHeldByOwner records of an owner still held
func (dao *OwnershipDAO) ListHeldByOwner(ownerKey string) ([]*model.OwnershipRecord, error) {
	records, err := dao.db.ListOwnershipRecordsByOwner(ownerKey)
	if err != nil {
		return nil, err
	}
	held := make([]*model.OwnershipRecord, 0, len(records))
	for _, r := range records {
		if r.Status == model.OwnershipHeld {
			held = append(held, r)
		}
	}
	return held, nil
}

// Lock held -> locked for a forge
func (dao *OwnershipDAO) Lock(forgeID string, identifiers []string) error {
	return dao.db.LockOwnershipRecords(forgeID, identifiers)
}

// Unlock locked -> held
func (dao *OwnershipDAO) Unlock(forgeID string, identifiers []string) error {
	return dao.db.UnlockOwnershipRecords(forgeID, identifiers)
}

// Burn locked -> burned
func (dao *OwnershipDAO) Burn(forgeID string, identifiers []string) error {
	return dao.db.BurnOwnershipRecords(forgeID, identifiers)
}
