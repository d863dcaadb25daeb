package forge_service

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
	"trivia-token-service/service/common_service"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("forge: operation not found")
	ErrInvalidType        = errors.New("forge: unknown forge type")
	ErrInvalidOwner       = errors.New("forge: owner key is empty")
	ErrNotCancellable     = errors.New("forge: only pending operations that never reached the ledger can be cancelled")
	ErrNothingToReconcile = errors.New("forge: operation has no ledger reference to reconcile")
	ErrInvalidTransition  = errors.New("forge: invalid status transition")
	ErrMintOutcomeUnknown = errors.New("forge: output mint may exist without a reference, settle it by hand")
)

// InitiateRequest forge request from an owner
type InitiateRequest struct {
	Type             model.ForgeType `json:"type"`
	CategoryID       string          `json:"categoryId,omitempty"`
	OwnerKey         string          `json:"ownerKey"`
	InputIdentifiers []string        `json:"inputIdentifiers"`
}

// ForgeService burn-then-mint orchestrator
type ForgeService struct {
	forgeDAO     *dao.ForgeOperationDAO
	ownershipDAO *dao.OwnershipDAO

	ledger  ledger.Client
	seasons *registry.SeasonCalendar
	policy  common_service.LedgerPolicy
	opts    common_service.Options
	locks   common_service.KeyedMutex
}

// NewForgeService create forge service
func NewForgeService(db database.Database, client ledger.Client, seasons *registry.SeasonCalendar, policy common_service.LedgerPolicy, opts common_service.Options) *ForgeService {
	return &ForgeService{
		forgeDAO:     dao.NewForgeOperationDAO(db),
		ownershipDAO: dao.NewOwnershipDAO(db),
		ledger:       client,
		seasons:      seasons,
		policy:       policy.WithDefaults(),
		opts:         opts.WithDefaults(),
	}
}

// Validate check a request against the owner's held records without changing anything
func (s *ForgeService) Validate(ctx context.Context, req InitiateRequest) error {
	_, err := s.validate(req)
	return err
}

func (s *ForgeService) validate(req InitiateRequest) (plan, error) {
	if !req.Type.Valid() {
		return plan{}, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}
	if req.OwnerKey == "" {
		return plan{}, ErrInvalidOwner
	}
	if req.CategoryID != "" && !registry.IsCategorySlug(req.CategoryID) {
		return plan{}, &registry.RegistryError{Kind: registry.KindCategory, Value: req.CategoryID}
	}
	if err := checkInputs(req.Type, req.InputIdentifiers); err != nil {
		return plan{}, err
	}

	now := s.opts.Now()
	if req.Type == model.ForgeSeasonalUltimate {
		if _, ok := s.seasons.ForgeableSeason(now); !ok {
			return plan{}, invalid(RuleNoOpenSeason, "no season is open or inside its grace period")
		}
	}

	records := make([]*model.OwnershipRecord, 0, len(req.InputIdentifiers))
	for _, id := range req.InputIdentifiers {
		r, err := s.ownershipDAO.GetByIdentifier(id)
		if err != nil {
			return plan{}, fmt.Errorf("lookup %s: %w", id, err)
		}
		if err := checkRecord(id, req.OwnerKey, r); err != nil {
			return plan{}, err
		}
		records = append(records, r)
	}

	return checkComposition(req.Type, req.CategoryID, records, func(seasonID string) bool {
		return s.seasons.AcceptsSeason(seasonID, now)
	})
}

// Initiate validate, persist and take the first step of a forge. The returned operation is
// pending or burn_submitted; later steps run on the processor.
func (s *ForgeService) Initiate(ctx context.Context, req InitiateRequest) (*model.ForgeOperation, error) {
	p, err := s.validate(req)
	if err != nil {
		s.countValidation(err)
		return nil, err
	}

	now := s.opts.Now()
	op := &model.ForgeOperation{
		ID:               uuid.NewString(),
		Type:             req.Type,
		OwnerKey:         req.OwnerKey,
		CategoryID:       p.categoryID,
		SeasonID:         p.seasonID,
		InputIdentifiers: append([]string(nil), req.InputIdentifiers...),
		Status:           model.ForgePending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.forgeDAO.Create(op); err != nil {
		if errors.Is(err, database.ErrRecordUnavailable) {
			vErr := invalid(RuleRecordInUse, "an input is already part of another forge")
			s.countValidation(vErr)
			return nil, vErr
		}
		return nil, fmt.Errorf("create forge operation: %w", err)
	}
	s.opts.Metrics.IncCounter(metrics.ForgeValidation, metrics.Labels{"rule": "ok"})
	s.opts.Metrics.IncCounter(metrics.ForgeOperations, metrics.Labels{"type": string(op.Type), "status": string(op.Status)})
	s.opts.Logger.Printf("forge: %s %s created for %s with %d inputs", op.ID, op.Type, op.OwnerKey, len(op.InputIdentifiers))

	if err := s.Advance(context.WithoutCancel(ctx), op.ID); err != nil {
		s.opts.Logger.Printf("forge: %s first step deferred: %v", op.ID, err)
	}
	return s.Status(ctx, op.ID)
}

// Status forge operation by id
func (s *ForgeService) Status(ctx context.Context, id string) (*model.ForgeOperation, error) {
	op, err := s.forgeDAO.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return op, nil
}

// ListStuck failed operations waiting for an operator
func (s *ForgeService) ListStuck(ctx context.Context) ([]*model.ForgeOperation, error) {
	return s.forgeDAO.ListStuck()
}

// Cancel abandon a pending forge whose burn never reached the ledger
func (s *ForgeService) Cancel(ctx context.Context, id string) (*model.ForgeOperation, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	op, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if op.Status != model.ForgePending || op.SubmitAttempts > 0 {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotCancellable, id, op.Status)
	}
	if err := s.ownershipDAO.Unlock(op.ID, op.InputIdentifiers); err != nil {
		return nil, fmt.Errorf("unlock inputs: %w", err)
	}
	if err := s.transition(op, model.ForgeCancelled); err != nil {
		return nil, err
	}
	if err := s.save(op); err != nil {
		return nil, err
	}
	s.opts.Logger.Printf("forge: %s cancelled", op.ID)
	return op, nil
}

// ProcessActive advance every non-terminal forge operation one step
func (s *ForgeService) ProcessActive(ctx context.Context) error {
	ops, err := s.forgeDAO.ListActive()
	if err != nil {
		return fmt.Errorf("list active forges: %w", err)
	}
	for _, op := range ops {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.Advance(ctx, op.ID); err != nil {
			s.opts.Logger.Printf("forge: advance %s failed: %v", op.ID, err)
		}
	}
	return nil
}

// Advance move one operation a single step along pending -> burn_submitted -> burn_confirmed
// -> mint_submitted -> confirmed. Returns an error when the step could not run and will be retried.
func (s *ForgeService) Advance(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	op, err := s.forgeDAO.GetByID(id)
	if err != nil {
		return fmt.Errorf("load forge operation %s: %w", id, err)
	}

	switch op.Status {
	case model.ForgePending:
		return s.burn(ctx, op)
	case model.ForgeBurnSubmitted:
		return s.pollBurn(ctx, op)
	case model.ForgeBurnConfirmed:
		return s.mint(ctx, op)
	case model.ForgeMintSubmitted:
		return s.pollMint(ctx, op)
	}
	return nil
}

func (s *ForgeService) burn(ctx context.Context, op *model.ForgeOperation) error {
	if err := s.ownershipDAO.Lock(op.ID, op.InputIdentifiers); err != nil {
		if errors.Is(err, database.ErrRecordUnavailable) || errors.Is(err, database.ErrNotFound) {
			return s.fail(op, model.ReasonInputsLost, err, false)
		}
		return fmt.Errorf("lock inputs: %w", err)
	}

	start := time.Now()
	ref, attempts, err := s.policy.SubmitWithRetry(ctx, func(ctx context.Context) (ledger.TxRef, error) {
		return s.ledger.SubmitBurn(ctx, ledger.NewBurnRequest(op.ID, op.OwnerKey, op.InputIdentifiers))
	})
	s.opts.Metrics.ObserveDuration(metrics.LedgerSubmitLatency, time.Since(start), metrics.Labels{"kind": "burn"})
	if !common_service.NotSubmitted(err) {
		op.SubmitAttempts += attempts
	}

	switch {
	case err == nil:
		s.countSubmission("burn", "ok")
		op.BurnTxRef = string(ref)
		op.PollAttempts = 0
		if err := s.transition(op, model.ForgeBurnSubmitted); err != nil {
			return err
		}
		s.opts.Logger.Printf("forge: %s burn submitted as %s", op.ID, op.BurnTxRef)
		return s.save(op)
	case common_service.NotSubmitted(err):
		s.countSubmission("burn", "deferred")
		if saveErr := s.save(op); saveErr != nil {
			return saveErr
		}
		return err
	case common_service.UnknownOutcome(err):
		// the burn may have landed: inputs stay locked
		s.countSubmission("burn", "unknown")
		return s.fail(op, model.ReasonUnknownOutcome, err, true)
	default:
		s.countSubmission("burn", "failed")
		if err := s.ownershipDAO.Unlock(op.ID, op.InputIdentifiers); err != nil {
			return fmt.Errorf("unlock inputs: %w", err)
		}
		return s.fail(op, model.ReasonSubmission, err, false)
	}
}

func (s *ForgeService) pollBurn(ctx context.Context, op *model.ForgeOperation) error {
	switch s.txState(ctx, op.BurnTxRef) {
	case ledger.TxConfirmed:
		if err := s.ownershipDAO.Burn(op.ID, op.InputIdentifiers); err != nil {
			return fmt.Errorf("burn inputs: %w", err)
		}
		if err := s.transition(op, model.ForgeBurnConfirmed); err != nil {
			return err
		}
		s.opts.Logger.Printf("forge: %s burn %s confirmed", op.ID, op.BurnTxRef)
		return s.save(op)
	case ledger.TxFailed:
		if err := s.ownershipDAO.Unlock(op.ID, op.InputIdentifiers); err != nil {
			return fmt.Errorf("unlock inputs: %w", err)
		}
		return s.fail(op, model.ReasonLedgerRejected, errors.New("ledger reported the burn transaction failed"), false)
	default:
		return s.waited(op)
	}
}

func (s *ForgeService) mint(ctx context.Context, op *model.ForgeOperation) error {
	if op.OutputIdentifier == "" {
		params, err := s.outputParams(op)
		if err != nil {
			return s.fail(op, model.ReasonPostBurn, err, true)
		}
		identifier, err := common_service.ClaimIdentifier(s.ownershipDAO, params, op.ID)
		if err != nil {
			return err
		}
		op.OutputIdentifier = identifier
		if err := s.save(op); err != nil {
			return err
		}
	}

	// past the burn a submission is sent at most once
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	ref, err := s.ledger.SubmitMint(ctx, ledger.MintRequest{
		RequestID:       op.ID,
		OwnerKey:        op.OwnerKey,
		AssetIdentifier: op.OutputIdentifier,
		Quantity:        1,
		Metadata: map[string]string{
			"forgeId":   op.ID,
			"forgeType": string(op.Type),
			"burnTxRef": op.BurnTxRef,
		},
	})
	s.opts.Metrics.ObserveDuration(metrics.LedgerSubmitLatency, time.Since(start), metrics.Labels{"kind": "mint"})
	if !common_service.NotSubmitted(err) {
		op.SubmitAttempts++
	}

	switch {
	case err == nil:
		s.countSubmission("mint", "ok")
		op.MintTxRef = string(ref)
		op.PollAttempts = 0
		if err := s.transition(op, model.ForgeMintSubmitted); err != nil {
			return err
		}
		s.opts.Logger.Printf("forge: %s mint submitted as %s", op.ID, op.MintTxRef)
		return s.save(op)
	case common_service.NotSubmitted(err):
		s.countSubmission("mint", "deferred")
		if saveErr := s.save(op); saveErr != nil {
			return saveErr
		}
		return err
	case common_service.UnknownOutcome(err):
		s.countSubmission("mint", "unknown")
		return s.fail(op, model.ReasonUnknownOutcome, err, true)
	default:
		s.countSubmission("mint", "failed")
		return s.fail(op, model.ReasonPostBurn, err, true)
	}
}

func (s *ForgeService) pollMint(ctx context.Context, op *model.ForgeOperation) error {
	switch s.txState(ctx, op.MintTxRef) {
	case ledger.TxConfirmed:
		return s.complete(op)
	case ledger.TxFailed:
		return s.fail(op, model.ReasonPostBurn, errors.New("ledger reported the mint transaction failed"), true)
	default:
		return s.waited(op)
	}
}

// complete record the forged token; safe to repeat after a partial pass
func (s *ForgeService) complete(op *model.ForgeOperation) error {
	existing, err := s.ownershipDAO.GetByIdentifier(op.OutputIdentifier)
	if err != nil {
		return fmt.Errorf("lookup output: %w", err)
	}
	if existing == nil {
		params, err := s.outputParams(op)
		if err != nil {
			return err
		}
		record := &model.OwnershipRecord{
			ID:              uuid.NewString(),
			OwnerKey:        op.OwnerKey,
			AssetIdentifier: op.OutputIdentifier,
			Tier:            string(params.Tier),
			Source:          model.SourceForge,
			CategoryID:      op.CategoryID,
			SeasonID:        op.SeasonID,
			Status:          model.OwnershipHeld,
			ForgeID:         op.ID,
			CreatedAt:       s.opts.Now(),
		}
		if err := s.ownershipDAO.Create(record); err != nil && !errors.Is(err, database.ErrDuplicateIdentifier) {
			return fmt.Errorf("create output record: %w", err)
		}
	}

	op.RequiresOperator = false
	if err := s.transition(op, model.ForgeConfirmed); err != nil {
		return err
	}
	if err := s.save(op); err != nil {
		return err
	}
	s.opts.Metrics.ObserveDuration(metrics.ForgeDuration, op.UpdatedAt.Sub(op.CreatedAt), metrics.Labels{"type": string(op.Type), "status": string(op.Status)})
	s.opts.Logger.Printf("forge: %s confirmed, %s owns %s", op.ID, op.OwnerKey, op.OutputIdentifier)
	return nil
}

// Reconcile operator action: re-derive the state of an operation from its ledger references.
// Nothing is submitted; an operation that can move again is handed back to the processor.
func (s *ForgeService) Reconcile(ctx context.Context, id string) (*model.ForgeOperation, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	op, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if op.Status == model.ForgeConfirmed || op.Status == model.ForgeCancelled {
		return op, nil
	}

	switch {
	case op.MintTxRef != "":
		state, err := s.ledger.TxStatus(ctx, ledger.TxRef(op.MintTxRef))
		if err != nil {
			return nil, fmt.Errorf("mint status: %w", err)
		}
		switch state {
		case ledger.TxConfirmed:
			op.Status = model.ForgeMintSubmitted
			if err := s.complete(op); err != nil {
				return nil, err
			}
		case ledger.TxPending:
			s.resume(op, model.ForgeMintSubmitted)
		default:
			s.opts.Logger.Printf("forge: reconcile %s, mint %s is %s", op.ID, op.MintTxRef, state)
			return op, nil
		}

	case op.BurnTxRef != "":
		state, err := s.ledger.TxStatus(ctx, ledger.TxRef(op.BurnTxRef))
		if err != nil {
			return nil, fmt.Errorf("burn status: %w", err)
		}
		switch state {
		case ledger.TxConfirmed:
			if op.Status == model.ForgeFailed && op.FailureReason == model.ReasonUnknownOutcome && op.OutputIdentifier != "" {
				// a mint without a reference may exist; resuming would send it again
				return nil, fmt.Errorf("%w: %s", ErrMintOutcomeUnknown, id)
			}
			if err := s.ownershipDAO.Burn(op.ID, op.InputIdentifiers); err != nil {
				return nil, fmt.Errorf("burn inputs: %w", err)
			}
			s.resume(op, model.ForgeBurnConfirmed)
		case ledger.TxPending:
			s.resume(op, model.ForgeBurnSubmitted)
		case ledger.TxFailed:
			if err := s.ownershipDAO.Unlock(op.ID, op.InputIdentifiers); err != nil {
				return nil, fmt.Errorf("unlock inputs: %w", err)
			}
			op.RequiresOperator = false
			op.FailureReason = model.ReasonLedgerRejected
			op.Status = model.ForgeFailed
			op.UpdatedAt = s.opts.Now()
		default:
			s.opts.Logger.Printf("forge: reconcile %s, burn %s is %s", op.ID, op.BurnTxRef, state)
			return op, nil
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrNothingToReconcile, id)
	}

	if err := s.save(op); err != nil {
		return nil, err
	}
	s.opts.Logger.Printf("forge: reconciled %s to %s", op.ID, op.Status)
	return op, nil
}

// resume put an operation back on the processor's path at status
func (s *ForgeService) resume(op *model.ForgeOperation, status model.ForgeStatus) {
	op.Status = status
	op.PollAttempts = 0
	op.RequiresOperator = false
	op.FailureReason = ""
	op.Error = ""
	op.UpdatedAt = s.opts.Now()
}

func (s *ForgeService) outputParams(op *model.ForgeOperation) (assetid.BuildParams, error) {
	switch op.Type {
	case model.ForgeCategoryUltimate:
		code, err := registry.CategoryCode(op.CategoryID)
		if err != nil {
			return assetid.BuildParams{}, err
		}
		return assetid.BuildParams{Tier: assetid.TierCategoryUltimate, CategoryCode: code}, nil
	case model.ForgeMasterUltimate:
		return assetid.BuildParams{Tier: assetid.TierMasterUltimate}, nil
	case model.ForgeSeasonalUltimate:
		return assetid.BuildParams{Tier: assetid.TierSeasonalUltimate, SeasonCode: op.SeasonID}, nil
	}
	return assetid.BuildParams{}, fmt.Errorf("%w: %q", ErrInvalidType, op.Type)
}

// txState ledger state of ref; an unreachable ledger reads as pending
func (s *ForgeService) txState(ctx context.Context, ref string) ledger.TxState {
	state, err := s.ledger.TxStatus(ctx, ledger.TxRef(ref))
	if err != nil {
		s.opts.Logger.Printf("forge: status of %s unavailable: %v", ref, err)
		return ledger.TxPending
	}
	return state
}

// waited count one unanswered poll; past the limit the outcome is declared unknown
func (s *ForgeService) waited(op *model.ForgeOperation) error {
	op.PollAttempts++
	if op.PollAttempts < s.policy.MaxPollAttempts {
		op.UpdatedAt = s.opts.Now()
		return s.save(op)
	}
	return s.fail(op, model.ReasonUnknownOutcome, fmt.Errorf("no confirmation after %d polls", op.PollAttempts), true)
}

func (s *ForgeService) fail(op *model.ForgeOperation, reason string, cause error, requiresOperator bool) error {
	op.FailureReason = reason
	op.Error = cause.Error()
	op.RequiresOperator = requiresOperator
	if err := s.transition(op, model.ForgeFailed); err != nil {
		return err
	}
	if err := s.save(op); err != nil {
		return err
	}
	s.opts.Metrics.ObserveDuration(metrics.ForgeDuration, op.UpdatedAt.Sub(op.CreatedAt), metrics.Labels{"type": string(op.Type), "status": string(op.Status)})
	if requiresOperator {
		s.opts.Logger.Printf("forge: %s failed (%s), operator required: %v", op.ID, reason, cause)
	} else {
		s.opts.Logger.Printf("forge: %s failed (%s): %v", op.ID, reason, cause)
	}
	return nil
}

func (s *ForgeService) transition(op *model.ForgeOperation, to model.ForgeStatus) error {
	if !op.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.Status, to)
	}
	op.Status = to
	op.UpdatedAt = s.opts.Now()
	s.opts.Metrics.IncCounter(metrics.ForgeOperations, metrics.Labels{"type": string(op.Type), "status": string(to)})
	return nil
}

func (s *ForgeService) save(op *model.ForgeOperation) error {
	if err := s.forgeDAO.Update(op); err != nil {
		return fmt.Errorf("save forge operation %s: %w", op.ID, err)
	}
	return nil
}

func (s *ForgeService) countSubmission(kind, result string) {
	s.opts.Metrics.IncCounter(metrics.LedgerSubmissions, metrics.Labels{"kind": kind, "result": result})
}

func (s *ForgeService) countValidation(err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		s.opts.Metrics.IncCounter(metrics.ForgeValidation, metrics.Labels{"rule": string(vErr.Rule)})
	}
}
