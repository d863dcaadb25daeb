package dao

import (
	"time"

	"trivia-token-service/database"
	model "trivia-token-service/models"
)

// EligibilityDAO eligibility data access object
type EligibilityDAO struct {
	db database.Database
}

// NewEligibilityDAO create eligibility DAO instance
func NewEligibilityDAO(db database.Database) *EligibilityDAO {
	return &EligibilityDAO{db: db}
}

// Create insert eligibility
func (dao *EligibilityDAO) Create(e *model.Eligibility) error {
	return dao.db.CreateEligibility(e)
}

// GetByID get eligibility by id
func (dao *EligibilityDAO) GetByID(id string) (*model.Eligibility, error) {
	return dao.db.GetEligibility(id)
}

// Consume atomic active -> used
func (dao *EligibilityDAO) Consume(id string, at time.Time) (*model.Eligibility, error) {
	return dao.db.ConsumeEligibility(id, at)
}

// Restore used -> active
func (dao *EligibilityDAO) Restore(id string) (*model.Eligibility, error) {
	return dao.db.RestoreEligibility(id)
}

// ListByPlayer eligibilities of a player
func (dao *EligibilityDAO) ListByPlayer(playerID string) ([]*model.Eligibility, error) {
	return dao.db.ListEligibilitiesByPlayer(playerID)
}
