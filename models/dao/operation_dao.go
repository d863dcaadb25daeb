package dao

import (
	"trivia-token-service/database"
	model "trivia-token-service/models"
)

// MintOperationDAO mint operation data access object
type MintOperationDAO struct {
	db database.Database
}

// NewMintOperationDAO create mint operation DAO instance
func NewMintOperationDAO(db database.Database) *MintOperationDAO {
	return &MintOperationDAO{db: db}
}

// Create insert mint operation
func (dao *MintOperationDAO) Create(op *model.MintOperation) error {
	return dao.db.CreateMintOperation(op)
}

// GetByID get mint operation by id
func (dao *MintOperationDAO) GetByID(id string) (*model.MintOperation, error) {
	return dao.db.GetMintOperation(id)
}

// Update persist mint operation
func (dao *MintOperationDAO) Update(op *model.MintOperation) error {
	return dao.db.UpdateMintOperation(op)
}

// ListActive pending and submitted mint operations
func (dao *MintOperationDAO) ListActive() ([]*model.MintOperation, error) {
	return dao.db.ListActiveMintOperations()
}

// ForgeOperationDAO forge operation data access object
type ForgeOperationDAO struct {
	db database.Database
}

// NewForgeOperationDAO create forge operation DAO instance
func NewForgeOperationDAO(db database.Database) *ForgeOperationDAO {
	return &ForgeOperationDAO{db: db}
}

// Create insert forge operation, claiming its inputs
func (dao *ForgeOperationDAO) Create(op *model.ForgeOperation) error {
	return dao.db.CreateForgeOperation(op)
}

// GetByID get forge operation by id
func (dao *ForgeOperationDAO) GetByID(id string) (*model.ForgeOperation, error) {
	return dao.db.GetForgeOperation(id)
}

// Update persist forge operation
func (dao *ForgeOperationDAO) Update(op *model.ForgeOperation) error {
	return dao.db.UpdateForgeOperation(op)
}

// ListActive every non-terminal forge operation
func (dao *ForgeOperationDAO) ListActive() ([]*model.ForgeOperation, error) {
	return dao.db.ListForgeOperationsByStatus(
		model.ForgePending,
		model.ForgeBurnSubmitted,
		model.ForgeBurnConfirmed,
		model.ForgeMintSubmitted,
	)
}

// ListStuck failed forge operations waiting for an operator
func (dao *ForgeOperationDAO) ListStuck() ([]*model.ForgeOperation, error) {
	failed, err := dao.db.ListForgeOperationsByStatus(model.ForgeFailed)
	if err != nil {
		return nil, err
	}
	stuck := make([]*model.ForgeOperation, 0, len(failed))
	for _, op := range failed {
		if op.RequiresOperator {
			stuck = append(stuck, op)
		}
	}
	return stuck, nil
}
