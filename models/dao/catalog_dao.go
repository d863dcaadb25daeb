package dao

import (
	"time"

	"trivia-token-service/database"
	model "trivia-token-service/models"
)

// CatalogDAO catalog item data access object
type CatalogDAO struct {
	db database.Database
}

// NewCatalogDAO create catalog DAO instance
func NewCatalogDAO(db database.Database) *CatalogDAO {
	return &CatalogDAO{db: db}
}

// CreateBatch insert catalog items as available
func (dao *CatalogDAO) CreateBatch(items []*model.CatalogItem) error {
	return dao.db.CreateCatalogItems(items)
}

// GetByID get catalog item by id
func (dao *CatalogDAO) GetByID(id string) (*model.CatalogItem, error) {
	return dao.db.GetCatalogItem(id)
}

// Reserve reserve one available item of the category
func (dao *CatalogDAO) Reserve(categoryID string, at time.Time) (*model.CatalogItem, error) {
	return dao.db.ReserveCatalogItem(categoryID, at)
}

// Release put a reserved item back
func (dao *CatalogDAO) Release(id string) error {
	return dao.db.ReleaseCatalogItem(id)
}

// MarkMinted retire a reserved item
func (dao *CatalogDAO) MarkMinted(id string, at time.Time) error {
	return dao.db.MarkCatalogItemMinted(id, at)
}

// ListReservedBefore reservations older than before
func (dao *CatalogDAO) ListReservedBefore(before time.Time) ([]*model.CatalogItem, error) {
	return dao.db.ListStaleReservations(before)
}

// CountAvailable available pool size
func (dao *CatalogDAO) CountAvailable(categoryID string) (int64, error) {
	return dao.db.CountAvailableCatalogItems(categoryID)
}
