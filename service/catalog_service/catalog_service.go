package catalog_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivia-token-service/database"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/models/dao"
	"trivia-token-service/registry"
	"trivia-token-service/service/common_service"

	"github.com/google/uuid"
)

// ErrCategoryExhausted no available item is left in the category
var ErrCategoryExhausted = errors.New("catalog: category exhausted")

// CatalogService catalog reservation service
type CatalogService struct {
	catalogDAO    *dao.CatalogDAO
	mintDAO       *dao.MintOperationDAO
	releaseWindow time.Duration
	opts          common_service.Options
}

// NewCatalogService create catalog service; releaseWindow <= 0 disables ReleaseStale
func NewCatalogService(db database.Database, releaseWindow time.Duration, opts common_service.Options) *CatalogService {
	return &CatalogService{
		catalogDAO:    dao.NewCatalogDAO(db),
		mintDAO:       dao.NewMintOperationDAO(db),
		releaseWindow: releaseWindow,
		opts:          opts.WithDefaults(),
	}
}

// Reserve atomically take one available item of the category
func (s *CatalogService) Reserve(ctx context.Context, categoryID string) (*model.CatalogItem, error) {
	if !registry.IsCategorySlug(categoryID) {
		return nil, &registry.RegistryError{Kind: registry.KindCategory, Value: categoryID}
	}

	item, err := s.catalogDAO.Reserve(categoryID, s.opts.Now())
	if err != nil {
		if errors.Is(err, database.ErrNoneAvailable) {
			s.opts.Metrics.IncCounter(metrics.CatalogReservations, metrics.Labels{"category": categoryID, "result": "exhausted"})
			return nil, fmt.Errorf("%w: %s", ErrCategoryExhausted, categoryID)
		}
		return nil, fmt.Errorf("reserve catalog item: %w", err)
	}

	s.opts.Metrics.IncCounter(metrics.CatalogReservations, metrics.Labels{"category": categoryID, "result": "reserved"})
	s.opts.Logger.Printf("catalog: reserved item %s in %s", item.ID, categoryID)
	return item, nil
}

// Release return a reserved item to the pool
func (s *CatalogService) Release(ctx context.Context, itemID string) error {
	return s.release(itemID, "manual")
}

func (s *CatalogService) release(itemID, reason string) error {
	if err := s.catalogDAO.Release(itemID); err != nil {
		return fmt.Errorf("release catalog item %s: %w", itemID, err)
	}
	s.opts.Metrics.IncCounter(metrics.CatalogReleases, metrics.Labels{"reason": reason})
	s.opts.Logger.Printf("catalog: released item %s (%s)", itemID, reason)
	return nil
}

// MarkMinted retire a reserved item for good
func (s *CatalogService) MarkMinted(ctx context.Context, itemID string) error {
	if err := s.catalogDAO.MarkMinted(itemID, s.opts.Now()); err != nil {
		return fmt.Errorf("mark catalog item %s minted: %w", itemID, err)
	}
	return nil
}

// Get catalog item by id
func (s *CatalogService) Get(ctx context.Context, itemID string) (*model.CatalogItem, error) {
	return s.catalogDAO.GetByID(itemID)
}

// Availability number of available items in the category
func (s *CatalogService) Availability(ctx context.Context, categoryID string) (int64, error) {
	if !registry.IsCategorySlug(categoryID) {
		return 0, &registry.RegistryError{Kind: registry.KindCategory, Value: categoryID}
	}
	return s.catalogDAO.CountAvailable(categoryID)
}

// Seed insert catalog items, generating ids where missing
func (s *CatalogService) Seed(ctx context.Context, items []*model.CatalogItem) error {
	for _, item := range items {
		if !registry.IsCategorySlug(item.CategoryID) {
			return &registry.RegistryError{Kind: registry.KindCategory, Value: item.CategoryID}
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
	}
	return s.catalogDAO.CreateBatch(items)
}

// ReleaseStale release items reserved longer than the release window whose mint operation is no
// longer in flight. Items held by a pending or submitted mint stay reserved.
func (s *CatalogService) ReleaseStale(ctx context.Context) (int, error) {
	if s.releaseWindow <= 0 {
		return 0, nil
	}

	stale, err := s.catalogDAO.ListReservedBefore(s.opts.Now().Add(-s.releaseWindow))
	if err != nil {
		return 0, fmt.Errorf("list stale reservations: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	active, err := s.mintDAO.ListActive()
	if err != nil {
		return 0, fmt.Errorf("list active mints: %w", err)
	}
	inFlight := make(map[string]bool, len(active))
	for _, op := range active {
		inFlight[op.CatalogItemID] = true
	}

	released := 0
	for _, item := range stale {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}
		if inFlight[item.ID] {
			continue
		}
		if err := s.release(item.ID, "stale"); err != nil {
			s.opts.Logger.Printf("catalog: failed to release stale item %s: %v", item.ID, err)
			continue
		}
		released++
	}
	return released, nil
}

// RunReleaseLoop run ReleaseStale every interval until ctx is done
func (s *CatalogService) RunReleaseLoop(ctx context.Context, interval time.Duration) {
	if s.releaseWindow <= 0 || interval <= 0 {
		s.opts.Logger.Println("catalog: stale reservation release disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.opts.Logger.Printf("catalog: releasing reservations older than %v every %v", s.releaseWindow, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ReleaseStale(ctx)
			if err != nil {
				s.opts.Logger.Printf("catalog: release stale failed: %v", err)
				continue
			}
			if n > 0 {
				s.opts.Logger.Printf("catalog: released %d stale reservations", n)
			}
		}
	}
}
