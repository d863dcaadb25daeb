package eligibility_service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"trivia-token-service/database"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/models/dao"
	"trivia-token-service/registry"
	"trivia-token-service/service/common_service"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("eligibility: not found")
	ErrExpired       = errors.New("eligibility: expired")
	ErrAlreadyUsed   = errors.New("eligibility: already used")
	ErrInvalidPlayer = errors.New("eligibility: player id is empty")
)

// Default claim windows
const (
	DefaultGuestWindow  = 25 * time.Minute
	DefaultPlayerWindow = 60 * time.Minute
)

// Windows claim windows by player kind
type Windows struct {
	Guest  time.Duration
	Player time.Duration
}

// EligibilityService eligibility ledger service
type EligibilityService struct {
	eligibilityDAO *dao.EligibilityDAO
	windows        Windows
	opts           common_service.Options
}

// NewEligibilityService create eligibility service; zero windows take the defaults
func NewEligibilityService(db database.Database, windows Windows, opts common_service.Options) *EligibilityService {
	if windows.Guest <= 0 {
		windows.Guest = DefaultGuestWindow
	}
	if windows.Player <= 0 {
		windows.Player = DefaultPlayerWindow
	}
	return &EligibilityService{
		eligibilityDAO: dao.NewEligibilityDAO(db),
		windows:        windows,
		opts:           opts.WithDefaults(),
	}
}

// Create record a qualifying game result
func (s *EligibilityService) Create(ctx context.Context, playerID, categoryID string, isGuest bool) (*model.Eligibility, error) {
	if playerID == "" {
		return nil, ErrInvalidPlayer
	}
	if !registry.IsCategorySlug(categoryID) {
		return nil, &registry.RegistryError{Kind: registry.KindCategory, Value: categoryID}
	}

	window := s.windows.Player
	if isGuest {
		window = s.windows.Guest
	}
	now := s.opts.Now()
	e := &model.Eligibility{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		CategoryID: categoryID,
		IsGuest:    isGuest,
		Status:     model.EligibilityActive,
		CreatedAt:  now,
		ExpiresAt:  now.Add(window),
	}
	if err := s.eligibilityDAO.Create(e); err != nil {
		return nil, fmt.Errorf("create eligibility: %w", err)
	}

	s.opts.Metrics.IncCounter(metrics.EligibilityCreated, metrics.Labels{"category": categoryID, "guest": strconv.FormatBool(isGuest)})
	s.opts.Logger.Printf("eligibility: created %s for player %s in %s, expires %s", e.ID, playerID, categoryID, e.ExpiresAt.Format(time.RFC3339))
	return e, nil
}

// Get eligibility as seen now; active records past expiry read as expired
func (s *EligibilityService) Get(ctx context.Context, id string) (*model.Eligibility, error) {
	e, err := s.eligibilityDAO.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Status = e.EffectiveStatus(s.opts.Now())
	return e, nil
}

// ListByPlayer eligibilities of a player as seen now
func (s *EligibilityService) ListByPlayer(ctx context.Context, playerID string) ([]*model.Eligibility, error) {
	list, err := s.eligibilityDAO.ListByPlayer(playerID)
	if err != nil {
		return nil, err
	}
	now := s.opts.Now()
	for _, e := range list {
		e.Status = e.EffectiveStatus(now)
	}
	return list, nil
}

// CheckActive return the eligibility when it can still be consumed
func (s *EligibilityService) CheckActive(ctx context.Context, id string) (*model.Eligibility, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, statusError(e.Status)
}

// Consume spend the eligibility; expiry is checked at the moment of consumption
func (s *EligibilityService) Consume(ctx context.Context, id string) error {
	e, err := s.eligibilityDAO.Consume(id, s.opts.Now())
	switch {
	case err == nil:
		s.opts.Metrics.IncCounter(metrics.EligibilityConsumed, metrics.Labels{"result": "used"})
		return nil
	case errors.Is(err, database.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, database.ErrStatusConflict):
		err = statusError(e.Status)
		s.opts.Metrics.IncCounter(metrics.EligibilityConsumed, metrics.Labels{"result": string(e.Status)})
		return err
	default:
		return fmt.Errorf("consume eligibility %s: %w", id, err)
	}
}

// Restore hand a used eligibility back when the claim it paid for produced no token
func (s *EligibilityService) Restore(ctx context.Context, id string) error {
	e, err := s.eligibilityDAO.Restore(id)
	switch {
	case err == nil:
		s.opts.Metrics.IncCounter(metrics.EligibilityConsumed, metrics.Labels{"result": "restored"})
		s.opts.Logger.Printf("eligibility: %s restored for %s", id, e.PlayerID)
		return nil
	case errors.Is(err, database.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, database.ErrStatusConflict):
		return fmt.Errorf("%w: %s is %s", database.ErrInvalidState, id, e.Status)
	default:
		return fmt.Errorf("restore eligibility %s: %w", id, err)
	}
}

func statusError(status model.EligibilityStatus) error {
	switch status {
	case model.EligibilityActive:
		return nil
	case model.EligibilityUsed:
		return ErrAlreadyUsed
	case model.EligibilityExpired:
		return ErrExpired
	}
	return fmt.Errorf("eligibility: unexpected status %q", status)
}
