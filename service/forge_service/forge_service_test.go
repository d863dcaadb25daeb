package forge_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-token-service/assetid"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
	"trivia-token-service/service/common_service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore refuses to persist confirmed forges while failConfirmed is set
type flakyStore struct {
	database.Database
	mu            sync.Mutex
	failConfirmed bool
}

func (f *flakyStore) setFailConfirmed(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failConfirmed = v
}

func (f *flakyStore) UpdateForgeOperation(op *model.ForgeOperation) error {
	f.mu.Lock()
	fail := f.failConfirmed
	f.mu.Unlock()
	if fail && op.Status == model.ForgeConfirmed {
		return errors.New("connection reset")
	}
	return f.Database.UpdateForgeOperation(op)
}

type fixture struct {
	svc    *ForgeService
	db     *flakyStore
	ledger *ledger.MemoryClient
	sink   *metrics.Memory
}

var testNow = time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pebbleDB, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { pebbleDB.Close() })
	db := &flakyStore{Database: pebbleDB}

	calendar, err := registry.NewSeasonCalendar([]registry.SeasonWindow{
		{Code: "FA4", StartsAt: testNow.AddDate(0, -4, 0), EndsAt: testNow.AddDate(0, -1, 0)},
		{Code: "WI1", StartsAt: testNow.AddDate(0, -1, 0), EndsAt: testNow.AddDate(0, 2, 0)},
	}, 72*time.Hour)
	require.NoError(t, err)

	client := ledger.NewMemoryClient()
	sink := metrics.NewMemory()
	svc := NewForgeService(db, client, calendar,
		common_service.LedgerPolicy{SubmitRetries: 2, RetryInterval: time.Millisecond, MaxPollAttempts: 3},
		common_service.Options{Metrics: sink, Now: func() time.Time { return testNow }})
	return &fixture{svc: svc, db: db, ledger: client, sink: sink}
}

// give mint n held base tokens of category to owner
func (f *fixture) give(t *testing.T, owner, category, season string, n int) []string {
	t.Helper()
	code, err := registry.CategoryCode(category)
	require.NoError(t, err)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := assetid.New(assetid.BuildParams{Tier: assetid.TierCategory, CategoryCode: code})
		require.NoError(t, err)
		require.NoError(t, f.db.CreateOwnershipRecord(&model.OwnershipRecord{
			ID:              uuid.NewString(),
			OwnerKey:        owner,
			AssetIdentifier: id,
			Tier:            string(assetid.TierCategory),
			Source:          model.SourceMint,
			CategoryID:      category,
			SeasonID:        season,
			Status:          model.OwnershipHeld,
		}))
		ids = append(ids, id)
	}
	return ids
}

// giveEach n tokens of every category
func (f *fixture) giveEach(t *testing.T, owner, season string, n int) []string {
	t.Helper()
	var ids []string
	for _, c := range registry.Categories() {
		ids = append(ids, f.give(t, owner, c.Slug, season, n)...)
	}
	return ids
}

func (f *fixture) drive(t *testing.T, passes int) {
	t.Helper()
	for i := 0; i < passes; i++ {
		require.NoError(t, f.svc.ProcessActive(context.Background()))
	}
}

func (f *fixture) status(t *testing.T, identifier string) model.OwnershipStatus {
	t.Helper()
	r, err := f.db.GetOwnershipRecordByIdentifier(identifier)
	require.NoError(t, err)
	return r.Status
}

func assertRule(t *testing.T, err error, rule Rule) {
	t.Helper()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
	assert.Equal(t, rule, vErr.Rule, vErr.Detail)
}

func TestValidateCompositionExamples(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	science := f.give(t, "alice", "science", "WI1", 10)
	assert.NoError(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: science}))
	assert.NoError(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, CategoryID: "science", OwnerKey: "alice", InputIdentifiers: science}))

	oneEach := f.giveEach(t, "bob", "WI1", 1)
	assert.NoError(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeMasterUltimate, OwnerKey: "bob", InputIdentifiers: oneEach}))

	twoEach := f.giveEach(t, "carol", "WI1", 2)
	assert.NoError(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "carol", InputIdentifiers: twoEach}))
	err := f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "carol", InputIdentifiers: twoEach[:19]})
	assertRule(t, err, RuleCountMismatch)
}

func TestValidateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	science := f.give(t, "alice", "science", "WI1", 10)
	history := f.give(t, "alice", "history", "WI1", 1)
	bobs := f.give(t, "bob", "science", "WI1", 1)

	cases := []struct {
		name string
		req  InitiateRequest
		rule Rule
	}{
		{"duplicate input", InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
			InputIdentifiers: append(science[:9:9], science[0])}, RuleDuplicateInput},
		{"short", InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
			InputIdentifiers: science[:9]}, RuleCountMismatch},
		{"mixed categories", InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
			InputIdentifiers: append(science[:9:9], history[0])}, RuleCategoryMismatch},
		{"requested other category", InitiateRequest{Type: model.ForgeCategoryUltimate, CategoryID: "history", OwnerKey: "alice",
			InputIdentifiers: science}, RuleCategoryMismatch},
		{"unknown identifier", InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
			InputIdentifiers: append(science[:9:9], "TNFT_V1_SCI_REG_ffffffff")}, RuleUnknownIdentifier},
		{"not owned", InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
			InputIdentifiers: append(science[:9:9], bobs[0])}, RuleNotOwned},
		{"master with duplicates", InitiateRequest{Type: model.ForgeMasterUltimate, OwnerKey: "alice",
			InputIdentifiers: science}, RuleDuplicateCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertRule(t, f.svc.Validate(ctx, tc.req), tc.rule)
		})
	}

	err := f.svc.Validate(ctx, InitiateRequest{Type: "legendary", OwnerKey: "alice", InputIdentifiers: science})
	assert.ErrorIs(t, err, ErrInvalidType)
	err = f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, CategoryID: "cooking", OwnerKey: "alice", InputIdentifiers: science})
	assert.ErrorIs(t, err, registry.ErrUnknownCode)
}

func TestValidateTierAndHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	science := f.give(t, "alice", "science", "WI1", 11)

	r, err := f.db.GetOwnershipRecordByIdentifier(science[10])
	require.NoError(t, err)
	r.ID = uuid.NewString()
	r.AssetIdentifier = "TNFT_V1_SCI_ULT_0a0b0c0d"
	r.Tier = string(assetid.TierCategoryUltimate)
	require.NoError(t, f.db.CreateOwnershipRecord(r))
	err = f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
		InputIdentifiers: append(science[:9:9], r.AssetIdentifier)})
	assertRule(t, err, RuleTierMismatch)

	require.NoError(t, f.db.LockOwnershipRecords("other-forge", science[10:]))
	require.NoError(t, f.db.BurnOwnershipRecords("other-forge", science[10:]))
	err = f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice",
		InputIdentifiers: append(science[:9:9], science[10])})
	assertRule(t, err, RuleNotHeld)
}

func TestValidateSeasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mixed := f.giveEach(t, "alice", "WI1", 2)
	mixed[19] = f.give(t, "alice", "nature", "FA4", 1)[0]
	assertRule(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "alice", InputIdentifiers: mixed}), RuleSeasonMismatch)

	// FA4 closed a month ago, beyond the three day grace period
	old := f.giveEach(t, "bob", "FA4", 2)
	assertRule(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "bob", InputIdentifiers: old}), RuleSeasonMismatch)

	unbalanced := append(f.give(t, "carol", "science", "WI1", 3), f.giveEach(t, "carol", "WI1", 2)[3:]...)
	require.Len(t, unbalanced, 20)
	assertRule(t, f.svc.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "carol", InputIdentifiers: unbalanced}), RuleDuplicateCategory)

	closed := NewForgeService(f.db, f.ledger, nil, common_service.LedgerPolicy{}, common_service.Options{})
	assertRule(t, closed.Validate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "alice", InputIdentifiers: mixed}), RuleNoOpenSeason)
}

func TestForgeHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "science", "WI1", 10)

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	assert.Equal(t, model.ForgeBurnSubmitted, op.Status)
	assert.Equal(t, "science", op.CategoryID)
	assert.Equal(t, model.OwnershipLocked, f.status(t, inputs[0]))

	require.Len(t, f.ledger.Burns, 1)
	assert.Equal(t, int64(-10), f.ledger.Burns[0].Quantity)
	assert.Equal(t, op.ID, f.ledger.Burns[0].RequestID)

	f.drive(t, 1)
	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeBurnConfirmed, op.Status)
	for _, id := range inputs {
		assert.Equal(t, model.OwnershipBurned, f.status(t, id))
	}

	f.drive(t, 2)
	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeConfirmed, op.Status)
	assert.NotEmpty(t, op.BurnTxRef)
	assert.NotEmpty(t, op.MintTxRef)

	parsed := assetid.Parse(op.OutputIdentifier)
	require.NotNil(t, parsed)
	assert.Equal(t, assetid.TierCategoryUltimate, assetid.TierOf(parsed))
	assert.Equal(t, "SCI", assetid.Describe(parsed).CategoryCode)

	out, err := f.db.GetOwnershipRecordByIdentifier(op.OutputIdentifier)
	require.NoError(t, err)
	assert.Equal(t, model.SourceForge, out.Source)
	assert.Equal(t, "alice", out.OwnerKey)
	assert.Equal(t, op.ID, out.ForgeID)
	assert.Equal(t, 1, f.sink.Count(metrics.ForgeOperations, metrics.Labels{"type": "category_ultimate", "status": "confirmed"}))
	assert.Equal(t, 1, f.sink.Observations(metrics.ForgeDuration, metrics.Labels{"type": "category_ultimate", "status": "confirmed"}))
}

func TestSeasonalForgeProducesSeasonIdentifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.giveEach(t, "alice", "WI1", 2)

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeSeasonalUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 3)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	require.Equal(t, model.ForgeConfirmed, op.Status)
	assert.Equal(t, "WI1", op.SeasonID)
	parsed := assetid.Parse(op.OutputIdentifier)
	require.NotNil(t, parsed)
	assert.Equal(t, assetid.TierSeasonalUltimate, assetid.TierOf(parsed))
	assert.Equal(t, "WI1", assetid.Describe(parsed).SeasonCode)
}

func TestPreBurnFailureUnlocksInputs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "music", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{SubmitErr: ledger.ErrSubmission}, ledger.Outcome{SubmitErr: ledger.ErrSubmission})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonSubmission, op.FailureReason)
	assert.False(t, op.RequiresOperator)
	assert.Equal(t, 2, op.SubmitAttempts)
	for _, id := range inputs {
		assert.Equal(t, model.OwnershipHeld, f.status(t, id))
	}

	again, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	assert.Equal(t, model.ForgeBurnSubmitted, again.Status)
}

func TestLedgerRejectedBurnUnlocksInputs(t *testing.T) {
	f := newFixture(t)
	inputs := f.give(t, "alice", "art", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{State: ledger.TxFailed})

	op, err := f.svc.Initiate(context.Background(), InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 1)

	op, err = f.svc.Status(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonLedgerRejected, op.FailureReason)
	assert.Equal(t, model.OwnershipHeld, f.status(t, inputs[3]))
}

func TestPostBurnMintFailureNeedsOperator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.giveEach(t, "alice", "WI1", 1)
	f.ledger.ScriptMint(ledger.Outcome{SubmitErr: ledger.ErrSubmission})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeMasterUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 4)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonPostBurn, op.FailureReason)
	assert.True(t, op.RequiresOperator)
	assert.NotEmpty(t, op.BurnTxRef)
	assert.Empty(t, op.MintTxRef)
	assert.Equal(t, model.OwnershipBurned, f.status(t, inputs[0]))

	mints, burns := f.ledger.Submissions()
	assert.Equal(t, 0, mints)
	assert.Equal(t, 1, burns)

	stuck, err := f.svc.ListStuck(ctx)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, op.ID, stuck[0].ID)
}

func TestPostBurnMintUnknownOutcomeIsNeverResubmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "science", "WI1", 10)
	f.ledger.ScriptMint(ledger.Outcome{SubmitErr: fmt.Errorf("%w: gateway timeout", ledger.ErrUnknownOutcome)})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, CategoryID: "science", OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 3)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonUnknownOutcome, op.FailureReason)
	assert.True(t, op.RequiresOperator)
	assert.NotEmpty(t, op.OutputIdentifier)
	assert.Empty(t, op.MintTxRef)
	assert.Equal(t, 2, op.SubmitAttempts)
	assert.Equal(t, model.OwnershipBurned, f.status(t, inputs[0]))

	f.drive(t, 3)
	mints, burns := f.ledger.Submissions()
	assert.Equal(t, 0, mints)
	assert.Equal(t, 1, burns)

	_, err = f.svc.Reconcile(ctx, op.ID)
	assert.ErrorIs(t, err, ErrMintOutcomeUnknown)
	f.drive(t, 2)
	mints, _ = f.ledger.Submissions()
	assert.Equal(t, 0, mints)

	stuck, err := f.svc.ListStuck(ctx)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, op.ID, stuck[0].ID)
}

func TestPostBurnMintBackpressureWaits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "history", "WI1", 10)
	f.ledger.ScriptMint(ledger.Outcome{SubmitErr: ledger.ErrBackpressure})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 2)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeBurnConfirmed, op.Status)
	assert.False(t, op.RequiresOperator)
	assert.Equal(t, 1, op.SubmitAttempts)

	f.drive(t, 2)
	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeConfirmed, op.Status)
	mints, _ := f.ledger.Submissions()
	assert.Equal(t, 1, mints)
}

func TestUnknownBurnSubmissionKeepsInputsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "art", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{SubmitErr: fmt.Errorf("%w: connection dropped", ledger.ErrUnknownOutcome)})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonUnknownOutcome, op.FailureReason)
	assert.True(t, op.RequiresOperator)
	assert.Equal(t, model.OwnershipLocked, f.status(t, inputs[0]))

	f.drive(t, 2)
	_, burns := f.ledger.Submissions()
	assert.Equal(t, 0, burns)

	_, err = f.svc.Cancel(ctx, op.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)
	_, err = f.svc.Reconcile(ctx, op.ID)
	assert.ErrorIs(t, err, ErrNothingToReconcile)
}

func TestUnknownBurnOutcomeThenReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "nature", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{PendingPolls: 10})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.drive(t, 3)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeFailed, op.Status)
	assert.Equal(t, model.ReasonUnknownOutcome, op.FailureReason)
	assert.True(t, op.RequiresOperator)
	assert.Equal(t, model.OwnershipLocked, f.status(t, inputs[0]))

	op, err = f.svc.Reconcile(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeBurnSubmitted, op.Status)
	assert.False(t, op.RequiresOperator)

	f.ledger.SetState(ledger.TxRef(op.BurnTxRef), ledger.TxConfirmed)
	f.drive(t, 3)
	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeConfirmed, op.Status)

	_, burns := f.ledger.Submissions()
	assert.Equal(t, 1, burns)
}

func TestStoreFailureAfterConfirmedMint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "sports", "WI1", 10)

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	f.db.setFailConfirmed(true)
	f.drive(t, 3)

	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeMintSubmitted, op.Status)
	assert.NotEmpty(t, op.MintTxRef)

	f.db.setFailConfirmed(false)
	f.drive(t, 1)
	op, err = f.svc.Status(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeConfirmed, op.Status)

	mints, burns := f.ledger.Submissions()
	assert.Equal(t, 1, mints)
	assert.Equal(t, 1, burns)
	held, err := f.db.ListOwnershipRecordsByOwner("alice")
	require.NoError(t, err)
	outputs := 0
	for _, r := range held {
		if r.Source == model.SourceForge {
			outputs++
		}
	}
	assert.Equal(t, 1, outputs)
}

func TestCancelPendingForge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "literature", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{SubmitErr: ledger.ErrBackpressure})

	op, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	require.Equal(t, model.ForgePending, op.Status)
	assert.Equal(t, 0, op.SubmitAttempts)

	op, err = f.svc.Cancel(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ForgeCancelled, op.Status)
	assert.Equal(t, model.OwnershipHeld, f.status(t, inputs[0]))

	_, err = f.svc.Cancel(ctx, op.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	submitted, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, submitted.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	_, err = f.svc.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInputsExclusiveAcrossForges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inputs := f.give(t, "alice", "technology", "WI1", 10)
	f.ledger.ScriptBurn(ledger.Outcome{SubmitErr: ledger.ErrBackpressure})

	first, err := f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	require.NoError(t, err)
	require.Equal(t, model.ForgePending, first.Status)

	_, err = f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "alice", InputIdentifiers: inputs})
	assertRule(t, err, RuleRecordInUse)
	assert.Equal(t, 1, f.sink.Count(metrics.ForgeValidation, metrics.Labels{"rule": "record_in_use"}))

	// a claim made by a forge that never locked still blocks the inputs
	require.NoError(t, f.db.CreateForgeOperation(&model.ForgeOperation{
		ID: "manual", Type: model.ForgeCategoryUltimate, OwnerKey: "bob",
		InputIdentifiers: f.give(t, "bob", "technology", "WI1", 10), Status: model.ForgePending, CreatedAt: testNow,
	}))
	manual, err := f.svc.Status(ctx, "manual")
	require.NoError(t, err)
	_, err = f.svc.Initiate(ctx, InitiateRequest{Type: model.ForgeCategoryUltimate, OwnerKey: "bob", InputIdentifiers: manual.InputIdentifiers})
	assertRule(t, err, RuleRecordInUse)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	f.give(t, "alice", "science", "WI1", 10)
	f.giveEach(t, "alice", "WI1", 1)
	f.give(t, "alice", "music", "FA4", 1)

	entries, err := f.svc.Progress(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, entries, registry.CategoryCount+2)

	byKey := map[string]ProgressEntry{}
	for _, e := range entries {
		byKey[string(e.Type)+"/"+e.CategoryID] = e
	}
	assert.Equal(t, ProgressEntry{Type: model.ForgeCategoryUltimate, CategoryID: "science", Required: 10, Current: 11, CanForge: true}, byKey["category_ultimate/science"])
	assert.Equal(t, 2, byKey["category_ultimate/music"].Current)
	assert.False(t, byKey["category_ultimate/music"].CanForge)

	master := byKey["master_ultimate/"]
	assert.Equal(t, 10, master.Current)
	assert.True(t, master.CanForge)

	seasonal := byKey["seasonal_ultimate/"]
	assert.Equal(t, "WI1", seasonal.SeasonID)
	assert.Equal(t, 20, seasonal.Required)
	assert.Equal(t, 11, seasonal.Current)
	assert.False(t, seasonal.CanForge)

	_, err = f.svc.Progress(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidOwner)
}
