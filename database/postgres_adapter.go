package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	model "trivia-token-service/models"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ Database = (*PostgresDatabase)(nil)

// PostgresDatabase PostgreSQL implementation on gorm over a lib/pq connection pool
type PostgresDatabase struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// PostgresConfig PostgreSQL configuration
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewPostgresDatabase open the pool, migrate tables and create the active forge input index
func NewPostgresDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PostgresConfig)
	if !ok {
		return nil, fmt.Errorf("invalid PostgreSQL config type")
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to init gorm: %w", err)
	}

	if err := db.AutoMigrate(
		&model.CatalogItem{},
		&model.Eligibility{},
		&model.AssetClaim{},
		&model.OwnershipRecord{},
		&model.MintOperation{},
		&model.ForgeOperation{},
		&model.ForgeInput{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	if err := db.Exec(forgeInputActiveIndex).Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create forge input index: %w", err)
	}

	log.Printf("PostgreSQL database connected successfully")
	return &PostgresDatabase{db: db, sqlDB: sqlDB}, nil
}

// forgeInputActiveIndex an identifier may back at most one non-terminal forge
const forgeInputActiveIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_forge_input_active ON tb_forge_input (asset_identifier) WHERE active`

// isUniqueViolation PostgreSQL duplicate key
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// Catalog operations

// CreateCatalogItems insert items as available
func (p *PostgresDatabase) CreateCatalogItems(items []*model.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.TierDefault == "" {
			item.TierDefault = model.TierDefaultBase
		}
		item.IsReserved, item.IsMinted = false, false
		item.ReservedAt, item.MintedAt = nil, nil
	}
	if err := p.db.Create(items).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCatalogItem get catalog item by id
func (p *PostgresDatabase) GetCatalogItem(id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := p.db.Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ReserveCatalogItem lock one available row, skipping rows other transactions hold
func (p *PostgresDatabase) ReserveCatalogItem(categoryID string, at time.Time) (*model.CatalogItem, error) {
	var item model.CatalogItem
	err := p.db.Transaction(func(tx *gorm.DB) error {
		err := availableItem(tx, categoryID).Take(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoneAvailable
		}
		if err != nil {
			return err
		}

		item.IsReserved = true
		item.ReservedAt = &at
		return tx.Model(&item).Updates(map[string]interface{}{
			"is_reserved": true,
			"reserved_at": at,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// availableItem first free item of a category, skipping rows other transactions hold
func availableItem(tx *gorm.DB, categoryID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("category_id = ? AND is_reserved = ? AND is_minted = ?", categoryID, false, false).
		Order("id").
		Limit(1)
}

// catalogTransition conditional update on one catalog row; zero rows means not found or wrong state
func (p *PostgresDatabase) catalogTransition(id string, where string, values map[string]interface{}) (bool, error) {
	res := p.db.Model(&model.CatalogItem{}).Where("id = ? AND "+where, id).Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseCatalogItem reserved -> available
func (p *PostgresDatabase) ReleaseCatalogItem(id string) error {
	ok, err := p.catalogTransition(id, "is_reserved = true AND is_minted = false", map[string]interface{}{
		"is_reserved": false,
		"reserved_at": nil,
	})
	if err != nil || ok {
		return err
	}
	item, err := p.GetCatalogItem(id)
	if err != nil {
		return err
	}
	return fmt.Errorf("release catalog item %s in state %s: %w", id, item.State(), ErrInvalidState)
}

// MarkCatalogItemMinted reserved -> minted
func (p *PostgresDatabase) MarkCatalogItemMinted(id string, at time.Time) error {
	ok, err := p.catalogTransition(id, "is_reserved = true AND is_minted = false", map[string]interface{}{
		"is_minted": true,
		"minted_at": at,
	})
	if err != nil || ok {
		return err
	}
	item, err := p.GetCatalogItem(id)
	if err != nil {
		return err
	}
	if item.IsMinted {
		return nil
	}
	return fmt.Errorf("mint catalog item %s in state %s: %w", id, item.State(), ErrInvalidState)
}

// ListStaleReservations items reserved before the given time
func (p *PostgresDatabase) ListStaleReservations(before time.Time) ([]*model.CatalogItem, error) {
	var items []*model.CatalogItem
	err := p.db.Where("is_reserved = ? AND is_minted = ? AND reserved_at < ?", true, false, before).
		Order("reserved_at").
		Find(&items).Error
	return items, err
}

// CountAvailableCatalogItems size of the available pool of a category
func (p *PostgresDatabase) CountAvailableCatalogItems(categoryID string) (int64, error) {
	var count int64
	err := p.db.Model(&model.CatalogItem{}).
		Where("category_id = ? AND is_reserved = ? AND is_minted = ?", categoryID, false, false).
		Count(&count).Error
	return count, err
}

// Eligibility operations

// CreateEligibility insert eligibility
func (p *PostgresDatabase) CreateEligibility(e *model.Eligibility) error {
	if err := p.db.Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetEligibility get eligibility by id
func (p *PostgresDatabase) GetEligibility(id string) (*model.Eligibility, error) {
	var e model.Eligibility
	if err := p.db.Where("id = ?", id).Take(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// ConsumeEligibility compare-and-set active -> used under a row lock
func (p *PostgresDatabase) ConsumeEligibility(id string, at time.Time) (*model.Eligibility, error) {
	var e model.Eligibility
	var conflict bool
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).Where("id = ?", id).Take(&e).Error; err != nil {
			return notFound(err)
		}
		if e.Status != model.EligibilityActive {
			conflict = true
			return nil
		}
		if !at.Before(e.ExpiresAt) {
			conflict = true
			e.Status = model.EligibilityExpired
			return tx.Model(&e).Update("status", e.Status).Error
		}
		e.Status = model.EligibilityUsed
		e.UsedAt = &at
		return tx.Model(&e).Updates(map[string]interface{}{
			"status":  e.Status,
			"used_at": at,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if conflict {
		return &e, ErrStatusConflict
	}
	return &e, nil
}

// RestoreEligibility used -> active in one conditional update
func (p *PostgresDatabase) RestoreEligibility(id string) (*model.Eligibility, error) {
	res := p.db.Model(&model.Eligibility{}).
		Where("id = ? AND status = ?", id, model.EligibilityUsed).
		Updates(map[string]interface{}{"status": model.EligibilityActive, "used_at": nil})
	if res.Error != nil {
		return nil, res.Error
	}
	e, err := p.GetEligibility(id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return e, ErrStatusConflict
	}
	return e, nil
}

// ListEligibilitiesByPlayer eligibilities of a player, oldest first
func (p *PostgresDatabase) ListEligibilitiesByPlayer(playerID string) ([]*model.Eligibility, error) {
	var list []*model.Eligibility
	err := p.db.Where("player_id = ?", playerID).Order("created_at").Find(&list).Error
	return list, err
}

// Asset identifier claims

// ClaimAssetIdentifier insert claim, unique key on the identifier
func (p *PostgresDatabase) ClaimAssetIdentifier(claim *model.AssetClaim) error {
	if err := p.db.Create(claim).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

// Ownership operations

// CreateOwnershipRecord insert ownership record
func (p *PostgresDatabase) CreateOwnershipRecord(record *model.OwnershipRecord) error {
	if err := p.db.Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

// GetOwnershipRecordByIdentifier get ownership record by asset identifier
func (p *PostgresDatabase) GetOwnershipRecordByIdentifier(identifier string) (*model.OwnershipRecord, error) {
	var record model.OwnershipRecord
	if err := p.db.Where("asset_identifier = ?", identifier).Take(&record).Error; err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

// ListOwnershipRecordsByOwner every record of the owner, newest first
func (p *PostgresDatabase) ListOwnershipRecordsByOwner(ownerKey string) ([]*model.OwnershipRecord, error) {
	var records []*model.OwnershipRecord
	err := p.db.Where("owner_key = ?", ownerKey).Order("created_at DESC").Find(&records).Error
	return records, err
}

func (p *PostgresDatabase) updateOwnership(forgeID string, identifiers []string, t ownershipTransition) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var records []*model.OwnershipRecord
		if err := tx.Clauses(forUpdate()).Where("asset_identifier IN ?", identifiers).Find(&records).Error; err != nil {
			return err
		}
		byIdentifier := make(map[string]*model.OwnershipRecord, len(records))
		for _, r := range records {
			byIdentifier[r.AssetIdentifier] = r
		}

		pending := make([]*model.OwnershipRecord, 0, len(records))
		for _, identifier := range identifiers {
			r, ok := byIdentifier[identifier]
			if !ok {
				return fmt.Errorf("ownership record %s: %w", identifier, ErrNotFound)
			}
			skip, err := t.check(r, forgeID)
			if err != nil {
				return fmt.Errorf("ownership record %s: %w", identifier, err)
			}
			if !skip {
				pending = append(pending, r)
			}
		}

		for _, r := range pending {
			t.apply(r, forgeID)
			if err := tx.Model(r).Updates(map[string]interface{}{
				"status":   r.Status,
				"forge_id": r.ForgeID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LockOwnershipRecords held -> locked
func (p *PostgresDatabase) LockOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, lockTransition)
}

// UnlockOwnershipRecords locked -> held
func (p *PostgresDatabase) UnlockOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, unlockTransition)
}

// BurnOwnershipRecords locked -> burned
func (p *PostgresDatabase) BurnOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, burnTransition)
}

// Mint operations

// CreateMintOperation insert mint operation
func (p *PostgresDatabase) CreateMintOperation(op *model.MintOperation) error {
	if err := p.db.Create(op).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetMintOperation get mint operation by id
func (p *PostgresDatabase) GetMintOperation(id string) (*model.MintOperation, error) {
	var op model.MintOperation
	if err := p.db.Where("id = ?", id).Take(&op).Error; err != nil {
		return nil, notFound(err)
	}
	return &op, nil
}

// UpdateMintOperation overwrite every column of the mint operation
func (p *PostgresDatabase) UpdateMintOperation(op *model.MintOperation) error {
	res := p.db.Model(&model.MintOperation{}).Where("id = ?", op.ID).Select("*").Updates(op)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveMintOperations non-terminal mint operations, oldest first
func (p *PostgresDatabase) ListActiveMintOperations() ([]*model.MintOperation, error) {
	var ops []*model.MintOperation
	err := p.db.Where("status IN ?", []model.MintStatus{model.MintPending, model.MintSubmitted}).
		Order("created_at").
		Find(&ops).Error
	return ops, err
}

// Forge operations

// CreateForgeOperation insert forge operation and its active input rows in one transaction
func (p *PostgresDatabase) CreateForgeOperation(op *model.ForgeOperation) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(op).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		inputs := make([]*model.ForgeInput, 0, len(op.InputIdentifiers))
		for _, identifier := range op.InputIdentifiers {
			inputs = append(inputs, &model.ForgeInput{ForgeID: op.ID, AssetIdentifier: identifier, Active: true})
		}
		if len(inputs) == 0 {
			return nil
		}
		if err := tx.Create(inputs).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrRecordUnavailable
			}
			return err
		}
		return nil
	})
}

// GetForgeOperation get forge operation by id
func (p *PostgresDatabase) GetForgeOperation(id string) (*model.ForgeOperation, error) {
	var op model.ForgeOperation
	if err := p.db.Where("id = ?", id).Take(&op).Error; err != nil {
		return nil, notFound(err)
	}
	return &op, nil
}

// UpdateForgeOperation overwrite forge operation, deactivating its inputs once terminal
func (p *PostgresDatabase) UpdateForgeOperation(op *model.ForgeOperation) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ForgeOperation{}).Where("id = ?", op.ID).Select("*").Updates(op)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if !op.Status.Terminal() {
			return nil
		}
		return tx.Model(&model.ForgeInput{}).Where("forge_id = ?", op.ID).Update("active", false).Error
	})
}

// ListForgeOperationsByStatus forge operations in any of the statuses, oldest first
func (p *PostgresDatabase) ListForgeOperationsByStatus(statuses ...model.ForgeStatus) ([]*model.ForgeOperation, error) {
	var ops []*model.ForgeOperation
	err := p.db.Where("status IN ?", statuses).Order("created_at").Find(&ops).Error
	return ops, err
}

// Close close the connection pool
func (p *PostgresDatabase) Close() error {
	return p.sqlDB.Close()
}
