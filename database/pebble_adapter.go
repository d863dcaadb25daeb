package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	model "trivia-token-service/models"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

var _ Database = (*PebbleDatabase)(nil)

// PebbleDatabase PebbleDB database implementation with multiple collections.
//
// Each collection is its own pebble instance. Operations touching several collections
// are serialized by mu and every write is synced, but they are not crash-atomic: a crash
// between two writes can leave collections disagreeing (e.g. an ownership record without
// its index entry). Use the postgres adapter where that matters.
type PebbleDatabase struct {
	collections map[string]*pebble.DB // Map of collection name to PebbleDB instance

	// mu serializes read-modify-write sequences spanning one or more collections
	mu sync.Mutex
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir  string
	InMemory bool // keep every collection on an in-memory filesystem
}

// Collection names and their key-value formats
const (
	collectionCatalogItem      = "catalog_item"      // key: {item_id}, value: JSON(CatalogItem)
	collectionCatalogAvailable = "catalog_available" // key: {category_id}:{item_id}, value: empty - available pool
	collectionCatalogReserved  = "catalog_reserved"  // key: {item_id}, value: reserved_at (RFC3339Nano)

	collectionEligibility       = "eligibility"        // key: {eligibility_id}, value: JSON(Eligibility)
	collectionEligibilityPlayer = "eligibility_player" // key: {player_id}:{created_unix_nano}:{eligibility_id}, value: empty

	collectionAssetClaim     = "asset_claim"     // key: {asset_identifier}, value: JSON(AssetClaim)
	collectionOwnership      = "ownership"       // key: {asset_identifier}, value: JSON(OwnershipRecord)
	collectionOwnershipOwner = "ownership_owner" // key: {owner_key}:{asset_identifier}, value: empty

	collectionMintOperation  = "mint_operation"  // key: {mint_id}, value: JSON(MintOperation)
	collectionForgeOperation = "forge_operation" // key: {forge_id}, value: JSON(ForgeOperation)
	collectionForgeInput     = "forge_input"     // key: {asset_identifier}, value: {forge_id} - inputs of non-terminal forges
)

// NewPebbleDatabase create PebbleDB database instance with multiple collections
func NewPebbleDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PebbleConfig)
	if !ok {
		return nil, fmt.Errorf("invalid PebbleDB config type")
	}

	if !cfg.InMemory {
		if err := os.MkdirAll(cfg.DataDir, 0777); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
		log.Printf("PebbleDB data directory: %s", cfg.DataDir)
	}

	collectionNames := []string{
		collectionCatalogItem,
		collectionCatalogAvailable,
		collectionCatalogReserved,
		collectionEligibility,
		collectionEligibilityPlayer,
		collectionAssetClaim,
		collectionOwnership,
		collectionOwnershipOwner,
		collectionMintOperation,
		collectionForgeOperation,
		collectionForgeInput,
	}

	collections := make(map[string]*pebble.DB)
	for _, name := range collectionNames {
		opts := &pebble.Options{}
		collectionPath := filepath.Join(cfg.DataDir, "token_db", name)
		if cfg.InMemory {
			opts.FS = vfs.NewMem()
			collectionPath = name
		}

		db, err := pebble.Open(collectionPath, opts)
		if err != nil {
			for _, openedDB := range collections {
				openedDB.Close()
			}
			return nil, fmt.Errorf("failed to open collection %s at %s: %w", name, collectionPath, err)
		}
		collections[name] = db
	}

	log.Printf("PebbleDB database connected successfully with %d collections", len(collections))
	return &PebbleDatabase{collections: collections}, nil
}

func (p *PebbleDatabase) getJSON(collection, key string, v interface{}) error {
	val, closer, err := p.collections[collection].Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return ErrNotFound
		}
		return err
	}
	defer closer.Close()
	return json.Unmarshal(val, v)
}

func (p *PebbleDatabase) setJSON(collection, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.collections[collection].Set([]byte(key), data, pebble.Sync)
}

func (p *PebbleDatabase) has(collection, key string) (bool, error) {
	_, closer, err := p.collections[collection].Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

func (p *PebbleDatabase) getString(collection, key string) (string, error) {
	val, closer, err := p.collections[collection].Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return "", ErrNotFound
		}
		return "", err
	}
	defer closer.Close()
	return string(val), nil
}

// scan walk keys under prefix in order until fn returns false; empty prefix walks the whole collection
func (p *PebbleDatabase) scan(collection, prefix string, fn func(key, value []byte) bool) error {
	var opts *pebble.IterOptions
	if prefix != "" {
		opts = &pebble.IterOptions{
			LowerBound: []byte(prefix),
			UpperBound: []byte(prefix + "~"),
		}
	}
	iter, err := p.collections[collection].NewIter(opts)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// Catalog operations

// CreateCatalogItems insert items as available; existing ids are rejected
func (p *PebbleDatabase) CreateCatalogItems(items []*model.CatalogItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range items {
		exists, err := p.has(collectionCatalogItem, item.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("catalog item %s: %w", item.ID, ErrAlreadyExists)
		}
	}

	now := time.Now()
	for _, item := range items {
		if item.TierDefault == "" {
			item.TierDefault = model.TierDefaultBase
		}
		item.IsReserved, item.IsMinted = false, false
		item.ReservedAt, item.MintedAt = nil, nil
		item.CreatedAt, item.UpdatedAt = now, now
		if err := p.setJSON(collectionCatalogItem, item.ID, item); err != nil {
			return err
		}
		if err := p.collections[collectionCatalogAvailable].Set([]byte(item.CategoryID+":"+item.ID), nil, pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}

// GetCatalogItem get catalog item by id
func (p *PebbleDatabase) GetCatalogItem(id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := p.getJSON(collectionCatalogItem, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ReserveCatalogItem take the first available item of the category
func (p *PebbleDatabase) ReserveCatalogItem(categoryID string, at time.Time) (*model.CatalogItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var poolKey string
	err := p.scan(collectionCatalogAvailable, categoryID+":", func(key, _ []byte) bool {
		poolKey = string(key)
		return false
	})
	if err != nil {
		return nil, err
	}
	if poolKey == "" {
		return nil, ErrNoneAvailable
	}

	itemID := strings.TrimPrefix(poolKey, categoryID+":")
	item, err := p.GetCatalogItem(itemID)
	if err != nil {
		return nil, err
	}

	item.IsReserved = true
	item.ReservedAt = &at
	item.UpdatedAt = at
	if err := p.collections[collectionCatalogAvailable].Delete([]byte(poolKey), pebble.Sync); err != nil {
		return nil, err
	}
	if err := p.setJSON(collectionCatalogItem, item.ID, item); err != nil {
		return nil, err
	}
	if err := p.collections[collectionCatalogReserved].Set([]byte(item.ID), []byte(at.Format(time.RFC3339Nano)), pebble.Sync); err != nil {
		return nil, err
	}
	return item, nil
}

// ReleaseCatalogItem put a reserved item back into the pool
func (p *PebbleDatabase) ReleaseCatalogItem(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, err := p.GetCatalogItem(id)
	if err != nil {
		return err
	}
	if item.State() != model.CatalogReserved {
		return fmt.Errorf("release catalog item %s in state %s: %w", id, item.State(), ErrInvalidState)
	}

	item.IsReserved = false
	item.ReservedAt = nil
	item.UpdatedAt = time.Now()
	if err := p.setJSON(collectionCatalogItem, id, item); err != nil {
		return err
	}
	if err := p.collections[collectionCatalogReserved].Delete([]byte(id), pebble.Sync); err != nil {
		return err
	}
	return p.collections[collectionCatalogAvailable].Set([]byte(item.CategoryID+":"+id), nil, pebble.Sync)
}

// MarkCatalogItemMinted reserved -> minted
func (p *PebbleDatabase) MarkCatalogItemMinted(id string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, err := p.GetCatalogItem(id)
	if err != nil {
		return err
	}
	switch item.State() {
	case model.CatalogMinted:
		return nil
	case model.CatalogAvailable:
		return fmt.Errorf("mint catalog item %s in state %s: %w", id, item.State(), ErrInvalidState)
	}

	item.IsMinted = true
	item.MintedAt = &at
	item.UpdatedAt = at
	if err := p.setJSON(collectionCatalogItem, id, item); err != nil {
		return err
	}
	return p.collections[collectionCatalogReserved].Delete([]byte(id), pebble.Sync)
}

// ListStaleReservations items reserved before the given time
func (p *PebbleDatabase) ListStaleReservations(before time.Time) ([]*model.CatalogItem, error) {
	var ids []string
	err := p.scan(collectionCatalogReserved, "", func(key, value []byte) bool {
		reservedAt, err := time.Parse(time.RFC3339Nano, string(value))
		if err != nil {
			return true
		}
		if reservedAt.Before(before) {
			ids = append(ids, string(key))
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	items := make([]*model.CatalogItem, 0, len(ids))
	for _, id := range ids {
		item, err := p.GetCatalogItem(id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CountAvailableCatalogItems size of the available pool of a category
func (p *PebbleDatabase) CountAvailableCatalogItems(categoryID string) (int64, error) {
	var count int64
	err := p.scan(collectionCatalogAvailable, categoryID+":", func(_, _ []byte) bool {
		count++
		return true
	})
	return count, err
}

// Eligibility operations

func eligibilityPlayerKey(e *model.Eligibility) string {
	return fmt.Sprintf("%s:%019d:%s", e.PlayerID, e.CreatedAt.UnixNano(), e.ID)
}

// CreateEligibility insert eligibility
func (p *PebbleDatabase) CreateEligibility(e *model.Eligibility) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionEligibility, e.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("eligibility %s: %w", e.ID, ErrAlreadyExists)
	}
	if err := p.setJSON(collectionEligibility, e.ID, e); err != nil {
		return err
	}
	return p.collections[collectionEligibilityPlayer].Set([]byte(eligibilityPlayerKey(e)), nil, pebble.Sync)
}

// GetEligibility get eligibility by id, stored status as is
func (p *PebbleDatabase) GetEligibility(id string) (*model.Eligibility, error) {
	var e model.Eligibility
	if err := p.getJSON(collectionEligibility, id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ConsumeEligibility compare-and-set active -> used
func (p *PebbleDatabase) ConsumeEligibility(id string, at time.Time) (*model.Eligibility, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.GetEligibility(id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.EligibilityActive {
		return e, ErrStatusConflict
	}
	if !at.Before(e.ExpiresAt) {
		e.Status = model.EligibilityExpired
		if err := p.setJSON(collectionEligibility, id, e); err != nil {
			return nil, err
		}
		return e, ErrStatusConflict
	}

	e.Status = model.EligibilityUsed
	e.UsedAt = &at
	if err := p.setJSON(collectionEligibility, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RestoreEligibility give a used eligibility back to its player
func (p *PebbleDatabase) RestoreEligibility(id string) (*model.Eligibility, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.GetEligibility(id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.EligibilityUsed {
		return e, ErrStatusConflict
	}
	e.Status = model.EligibilityActive
	e.UsedAt = nil
	if err := p.setJSON(collectionEligibility, id, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEligibilitiesByPlayer eligibilities of a player, oldest first
func (p *PebbleDatabase) ListEligibilitiesByPlayer(playerID string) ([]*model.Eligibility, error) {
	var ids []string
	err := p.scan(collectionEligibilityPlayer, playerID+":", func(key, _ []byte) bool {
		k := string(key)
		ids = append(ids, k[strings.LastIndex(k, ":")+1:])
		return true
	})
	if err != nil {
		return nil, err
	}

	list := make([]*model.Eligibility, 0, len(ids))
	for _, id := range ids {
		e, err := p.GetEligibility(id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		list = append(list, e)
	}
	return list, nil
}

// Asset identifier claims

// ClaimAssetIdentifier reserve an identifier, ErrDuplicateIdentifier when taken
func (p *PebbleDatabase) ClaimAssetIdentifier(claim *model.AssetClaim) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionAssetClaim, claim.AssetIdentifier)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateIdentifier
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	return p.setJSON(collectionAssetClaim, claim.AssetIdentifier, claim)
}

// Ownership operations

// CreateOwnershipRecord insert ownership record, one per identifier
func (p *PebbleDatabase) CreateOwnershipRecord(record *model.OwnershipRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionOwnership, record.AssetIdentifier)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateIdentifier
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if err := p.setJSON(collectionOwnership, record.AssetIdentifier, record); err != nil {
		return err
	}
	return p.collections[collectionOwnershipOwner].Set([]byte(record.OwnerKey+":"+record.AssetIdentifier), nil, pebble.Sync)
}

// GetOwnershipRecordByIdentifier get ownership record by asset identifier
func (p *PebbleDatabase) GetOwnershipRecordByIdentifier(identifier string) (*model.OwnershipRecord, error) {
	var record model.OwnershipRecord
	if err := p.getJSON(collectionOwnership, identifier, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListOwnershipRecordsByOwner every record of the owner, burned included, newest first
func (p *PebbleDatabase) ListOwnershipRecordsByOwner(ownerKey string) ([]*model.OwnershipRecord, error) {
	var identifiers []string
	err := p.scan(collectionOwnershipOwner, ownerKey+":", func(key, _ []byte) bool {
		identifiers = append(identifiers, strings.TrimPrefix(string(key), ownerKey+":"))
		return true
	})
	if err != nil {
		return nil, err
	}

	records := make([]*model.OwnershipRecord, 0, len(identifiers))
	for _, identifier := range identifiers {
		record, err := p.GetOwnershipRecordByIdentifier(identifier)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// updateOwnership apply t to every identifier once its check passed on all of them
func (p *PebbleDatabase) updateOwnership(forgeID string, identifiers []string, t ownershipTransition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := make([]*model.OwnershipRecord, 0, len(identifiers))
	for _, identifier := range identifiers {
		record, err := p.GetOwnershipRecordByIdentifier(identifier)
		if err != nil {
			return fmt.Errorf("ownership record %s: %w", identifier, err)
		}
		skip, err := t.check(record, forgeID)
		if err != nil {
			return fmt.Errorf("ownership record %s: %w", identifier, err)
		}
		if !skip {
			pending = append(pending, record)
		}
	}

	now := time.Now()
	for _, record := range pending {
		t.apply(record, forgeID)
		record.UpdatedAt = now
		if err := p.setJSON(collectionOwnership, record.AssetIdentifier, record); err != nil {
			return err
		}
	}
	return nil
}

// LockOwnershipRecords held -> locked
func (p *PebbleDatabase) LockOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, lockTransition)
}

// UnlockOwnershipRecords locked -> held
func (p *PebbleDatabase) UnlockOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, unlockTransition)
}

// BurnOwnershipRecords locked -> burned
func (p *PebbleDatabase) BurnOwnershipRecords(forgeID string, identifiers []string) error {
	return p.updateOwnership(forgeID, identifiers, burnTransition)
}

// Mint operations

// CreateMintOperation insert mint operation
func (p *PebbleDatabase) CreateMintOperation(op *model.MintOperation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionMintOperation, op.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("mint operation %s: %w", op.ID, ErrAlreadyExists)
	}
	return p.setJSON(collectionMintOperation, op.ID, op)
}

// GetMintOperation get mint operation by id
func (p *PebbleDatabase) GetMintOperation(id string) (*model.MintOperation, error) {
	var op model.MintOperation
	if err := p.getJSON(collectionMintOperation, id, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// UpdateMintOperation overwrite mint operation
func (p *PebbleDatabase) UpdateMintOperation(op *model.MintOperation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionMintOperation, op.ID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return p.setJSON(collectionMintOperation, op.ID, op)
}

// ListActiveMintOperations non-terminal mint operations, oldest first
func (p *PebbleDatabase) ListActiveMintOperations() ([]*model.MintOperation, error) {
	ops := make([]*model.MintOperation, 0)
	err := p.scan(collectionMintOperation, "", func(_, value []byte) bool {
		var op model.MintOperation
		if err := json.Unmarshal(value, &op); err != nil {
			return true
		}
		if !op.Status.Terminal() {
			ops = append(ops, &op)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
	return ops, nil
}

// Forge operations

// CreateForgeOperation insert forge operation and claim its inputs
func (p *PebbleDatabase) CreateForgeOperation(op *model.ForgeOperation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionForgeOperation, op.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("forge operation %s: %w", op.ID, ErrAlreadyExists)
	}

	for _, identifier := range op.InputIdentifiers {
		holder, err := p.getString(collectionForgeInput, identifier)
		if err == nil {
			return fmt.Errorf("input %s claimed by forge %s: %w", identifier, holder, ErrRecordUnavailable)
		}
		if err != ErrNotFound {
			return err
		}
	}

	if err := p.setJSON(collectionForgeOperation, op.ID, op); err != nil {
		return err
	}
	for _, identifier := range op.InputIdentifiers {
		if err := p.collections[collectionForgeInput].Set([]byte(identifier), []byte(op.ID), pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}

// GetForgeOperation get forge operation by id
func (p *PebbleDatabase) GetForgeOperation(id string) (*model.ForgeOperation, error) {
	var op model.ForgeOperation
	if err := p.getJSON(collectionForgeOperation, id, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// UpdateForgeOperation overwrite forge operation, dropping input claims once terminal
func (p *PebbleDatabase) UpdateForgeOperation(op *model.ForgeOperation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.has(collectionForgeOperation, op.ID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := p.setJSON(collectionForgeOperation, op.ID, op); err != nil {
		return err
	}
	if !op.Status.Terminal() {
		return nil
	}

	for _, identifier := range op.InputIdentifiers {
		holder, err := p.getString(collectionForgeInput, identifier)
		if err != nil && err != ErrNotFound {
			return err
		}
		if holder != op.ID {
			continue
		}
		if err := p.collections[collectionForgeInput].Delete([]byte(identifier), pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}

// ListForgeOperationsByStatus forge operations in any of the statuses, oldest first
func (p *PebbleDatabase) ListForgeOperationsByStatus(statuses ...model.ForgeStatus) ([]*model.ForgeOperation, error) {
	wanted := make(map[model.ForgeStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	ops := make([]*model.ForgeOperation, 0)
	err := p.scan(collectionForgeOperation, "", func(_, value []byte) bool {
		var op model.ForgeOperation
		if err := json.Unmarshal(value, &op); err != nil {
			return true
		}
		if wanted[op.Status] {
			ops = append(ops, &op)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
	return ops, nil
}

// Close close all database connections
func (p *PebbleDatabase) Close() error {
	var lastErr error
	for name, db := range p.collections {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close collection %s: %v", name, err)
			lastErr = err
		}
	}
	return lastErr
}
