package mint_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivia-token-service/assetid"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/models/dao"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/common_service"
	"trivia-token-service/service/eligibility_service"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("mint: operation not found")
	ErrInvalidOwner = errors.New("mint: owner key is empty")
)

// MintService turns an eligibility into a minted token
type MintService struct {
	eligibility *eligibility_service.EligibilityService
	catalog     *catalog_service.CatalogService

	mintDAO      *dao.MintOperationDAO
	ownershipDAO *dao.OwnershipDAO

	ledger  ledger.Client
	seasons *registry.SeasonCalendar
	policy  common_service.LedgerPolicy
	opts    common_service.Options
	locks   common_service.KeyedMutex
}

// NewMintService create mint service
func NewMintService(
	db database.Database,
	eligibility *eligibility_service.EligibilityService,
	catalog *catalog_service.CatalogService,
	client ledger.Client,
	seasons *registry.SeasonCalendar,
	policy common_service.LedgerPolicy,
	opts common_service.Options,
) *MintService {
	return &MintService{
		eligibility:  eligibility,
		catalog:      catalog,
		mintDAO:      dao.NewMintOperationDAO(db),
		ownershipDAO: dao.NewOwnershipDAO(db),
		ledger:       client,
		seasons:      seasons,
		policy:       policy.WithDefaults(),
		opts:         opts.WithDefaults(),
	}
}

// Claim spend an eligibility on one catalog design of its category and submit the mint.
// A claim that fails before anything reaches the ledger gives back both the catalog item and
// the eligibility.
func (s *MintService) Claim(ctx context.Context, eligibilityID, ownerKey string) (*model.MintOperation, error) {
	if ownerKey == "" {
		return nil, ErrInvalidOwner
	}

	e, err := s.eligibility.CheckActive(ctx, eligibilityID)
	if err != nil {
		return nil, err
	}
	categoryCode, err := registry.CategoryCode(e.CategoryID)
	if err != nil {
		return nil, err
	}

	item, err := s.catalog.Reserve(ctx, e.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	op := &model.MintOperation{
		ID:            uuid.NewString(),
		EligibilityID: eligibilityID,
		CatalogItemID: item.ID,
		OwnerKey:      ownerKey,
		CategoryID:    e.CategoryID,
		Status:        model.MintPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if season, ok := s.seasons.OpenSeason(now); ok {
		op.SeasonID = season
	}

	unlock := s.locks.Lock(op.ID)
	defer unlock()

	op.AssetIdentifier, err = common_service.ClaimIdentifier(s.ownershipDAO, assetid.BuildParams{
		Tier:         assetid.TierCategory,
		CategoryCode: categoryCode,
	}, op.ID)
	if err != nil {
		s.releaseItem(item.ID)
		return nil, err
	}

	if err := s.eligibility.Consume(ctx, eligibilityID); err != nil {
		s.releaseItem(item.ID)
		return nil, err
	}

	if err := s.mintDAO.Create(op); err != nil {
		s.giveBack(op)
		return nil, fmt.Errorf("create mint operation: %w", err)
	}
	s.opts.Metrics.IncCounter(metrics.MintOperations, metrics.Labels{"status": string(model.MintPending)})
	s.opts.Logger.Printf("mint: %s created for %s, item %s, identifier %s", op.ID, ownerKey, item.ID, op.AssetIdentifier)

	// a client going away must not leave a half sent submission behind
	if err := s.submit(context.WithoutCancel(ctx), op); err != nil {
		s.opts.Logger.Printf("mint: %s first submission deferred: %v", op.ID, err)
	}
	return op, nil
}

// Get mint operation by id
func (s *MintService) Get(ctx context.Context, id string) (*model.MintOperation, error) {
	op, err := s.mintDAO.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return op, nil
}

// ListTokens ownership records of an owner
func (s *MintService) ListTokens(ctx context.Context, ownerKey string) ([]*model.OwnershipRecord, error) {
	return s.ownershipDAO.ListByOwner(ownerKey)
}

// Advance move one operation a single step: submit pending, poll submitted
func (s *MintService) Advance(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	op, err := s.mintDAO.GetByID(id)
	if err != nil {
		return fmt.Errorf("load mint operation %s: %w", id, err)
	}
	switch op.Status {
	case model.MintPending:
		return s.submit(ctx, op)
	case model.MintSubmitted:
		return s.poll(ctx, op)
	}
	return nil
}

// ProcessActive advance every non-terminal mint operation once
func (s *MintService) ProcessActive(ctx context.Context) error {
	ops, err := s.mintDAO.ListActive()
	if err != nil {
		return fmt.Errorf("list active mints: %w", err)
	}
	for _, op := range ops {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.Advance(ctx, op.ID); err != nil {
			s.opts.Logger.Printf("mint: advance %s failed: %v", op.ID, err)
		}
	}
	return nil
}

func (s *MintService) submit(ctx context.Context, op *model.MintOperation) error {
	start := time.Now()
	ref, attempts, err := s.policy.SubmitWithRetry(ctx, func(ctx context.Context) (ledger.TxRef, error) {
		return s.ledger.SubmitMint(ctx, ledger.MintRequest{
			RequestID:       op.ID,
			OwnerKey:        op.OwnerKey,
			AssetIdentifier: op.AssetIdentifier,
			Quantity:        1,
			Metadata: map[string]string{
				"catalogItemId": op.CatalogItemID,
				"categoryId":    op.CategoryID,
			},
		})
	})
	s.opts.Metrics.ObserveDuration(metrics.LedgerSubmitLatency, time.Since(start), metrics.Labels{"kind": "mint"})
	op.SubmitAttempts += attempts

	switch {
	case err == nil:
		op.TxRef = string(ref)
		s.setStatus(op, model.MintSubmitted)
		s.opts.Metrics.IncCounter(metrics.LedgerSubmissions, metrics.Labels{"kind": "mint", "result": "ok"})
		return s.save(op)
	case common_service.NotSubmitted(err):
		s.opts.Metrics.IncCounter(metrics.LedgerSubmissions, metrics.Labels{"kind": "mint", "result": "deferred"})
		if saveErr := s.save(op); saveErr != nil {
			return saveErr
		}
		return err
	case common_service.UnknownOutcome(err):
		// the mint may exist: the item stays reserved and the eligibility spent
		s.opts.Metrics.IncCounter(metrics.LedgerSubmissions, metrics.Labels{"kind": "mint", "result": "unknown"})
		op.FailureReason = model.ReasonUnknownOutcome
		op.Error = err.Error()
		op.RequiresOperator = true
		s.setStatus(op, model.MintFailed)
		s.opts.Logger.Printf("mint: %s submission outcome unknown, operator required: %v", op.ID, err)
		return s.save(op)
	default:
		s.opts.Metrics.IncCounter(metrics.LedgerSubmissions, metrics.Labels{"kind": "mint", "result": "failed"})
		op.FailureReason = model.ReasonSubmission
		op.Error = err.Error()
		s.setStatus(op, model.MintFailed)
		if err := s.save(op); err != nil {
			return err
		}
		s.giveBack(op)
		return nil
	}
}

func (s *MintService) poll(ctx context.Context, op *model.MintOperation) error {
	state, err := s.ledger.TxStatus(ctx, ledger.TxRef(op.TxRef))
	if err != nil {
		state = ledger.TxPending
		s.opts.Logger.Printf("mint: status of %s (%s) unavailable: %v", op.ID, op.TxRef, err)
	}

	switch state {
	case ledger.TxConfirmed:
		return s.complete(op)
	case ledger.TxFailed:
		op.FailureReason = model.ReasonLedgerRejected
		op.Error = "ledger reported the mint transaction failed"
		s.setStatus(op, model.MintFailed)
		if err := s.save(op); err != nil {
			return err
		}
		s.giveBack(op)
		return nil
	default:
		op.PollAttempts++
		if op.PollAttempts >= s.policy.MaxPollAttempts {
			// the item stays reserved until an operator settles the outcome
			op.FailureReason = model.ReasonUnknownOutcome
			op.Error = fmt.Sprintf("no confirmation after %d polls", op.PollAttempts)
			op.RequiresOperator = true
			s.setStatus(op, model.MintFailed)
			s.opts.Logger.Printf("mint: %s outcome unknown, operator required", op.ID)
		} else {
			op.UpdatedAt = s.opts.Now()
		}
		return s.save(op)
	}
}

// complete record the confirmed mint. Every step tolerates having run before, so a pass that
// failed half way is finished by the next one without touching the ledger again.
func (s *MintService) complete(op *model.MintOperation) error {
	existing, err := s.ownershipDAO.GetByIdentifier(op.AssetIdentifier)
	if err != nil {
		return fmt.Errorf("lookup ownership: %w", err)
	}
	if existing == nil {
		record := &model.OwnershipRecord{
			ID:              uuid.NewString(),
			OwnerKey:        op.OwnerKey,
			AssetIdentifier: op.AssetIdentifier,
			Tier:            string(assetid.TierCategory),
			Source:          model.SourceMint,
			CategoryID:      op.CategoryID,
			SeasonID:        op.SeasonID,
			Status:          model.OwnershipHeld,
			CreatedAt:       s.opts.Now(),
		}
		if err := s.ownershipDAO.Create(record); err != nil && !errors.Is(err, database.ErrDuplicateIdentifier) {
			return fmt.Errorf("create ownership record: %w", err)
		}
	}

	if err := s.catalog.MarkMinted(context.Background(), op.CatalogItemID); err != nil {
		return err
	}

	s.setStatus(op, model.MintConfirmed)
	if err := s.save(op); err != nil {
		return err
	}
	s.opts.Logger.Printf("mint: %s confirmed, %s owns %s", op.ID, op.OwnerKey, op.AssetIdentifier)
	return nil
}

func (s *MintService) setStatus(op *model.MintOperation, status model.MintStatus) {
	op.Status = status
	op.UpdatedAt = s.opts.Now()
	s.opts.Metrics.IncCounter(metrics.MintOperations, metrics.Labels{"status": string(status)})
}

func (s *MintService) save(op *model.MintOperation) error {
	if err := s.mintDAO.Update(op); err != nil {
		return fmt.Errorf("save mint operation %s: %w", op.ID, err)
	}
	return nil
}

// giveBack return the catalog item and the eligibility of a mint that produced nothing
func (s *MintService) giveBack(op *model.MintOperation) {
	s.releaseItem(op.CatalogItemID)
	if err := s.eligibility.Restore(context.Background(), op.EligibilityID); err != nil {
		s.opts.Logger.Printf("mint: failed to restore eligibility %s: %v", op.EligibilityID, err)
	}
}

func (s *MintService) releaseItem(itemID string) {
	if err := s.catalog.Release(context.Background(), itemID); err != nil {
		s.opts.Logger.Printf("mint: failed to release catalog item %s: %v", itemID, err)
	}
}
