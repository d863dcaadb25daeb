package ledger

import (
	"context"
	"fmt"
	"sync"
)

// Outcome scripted result of one submission to a MemoryClient
type Outcome struct {
	SubmitErr    error   // returned by the submit call, no transaction is recorded
	State        TxState // final state, confirmed when empty
	PendingPolls int     // TxStatus calls answering pending before State
}

type memoryTx struct {
	state        TxState
	pendingPolls int
}

// MemoryClient in-process ledger with scriptable outcomes
type MemoryClient struct {
	mu sync.Mutex

	seq       int
	txs       map[TxRef]*memoryTx
	byRequest map[string]TxRef

	mintScript []Outcome
	burnScript []Outcome
	statusErr  error

	Mints []MintRequest
	Burns []BurnRequest
}

var _ Client = (*MemoryClient)(nil)

// NewMemoryClient create ledger confirming every submission on the first poll
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		txs:       make(map[TxRef]*memoryTx),
		byRequest: make(map[string]TxRef),
	}
}

// ScriptMint queue outcomes for the next mint submissions
func (m *MemoryClient) ScriptMint(outcomes ...Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mintScript = append(m.mintScript, outcomes...)
}

// ScriptBurn queue outcomes for the next burn submissions
func (m *MemoryClient) ScriptBurn(outcomes ...Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.burnScript = append(m.burnScript, outcomes...)
}

// SetStatusError make TxStatus fail until cleared with nil
func (m *MemoryClient) SetStatusError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErr = err
}

// SetState force the state of a recorded transaction
func (m *MemoryClient) SetState(ref TxRef, state TxState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.txs[ref]; ok {
		tx.state = state
		tx.pendingPolls = 0
	}
}

func (m *MemoryClient) submit(kind, requestID string, script *[]Outcome) (TxRef, error) {
	if ref, ok := m.byRequest[kind+":"+requestID]; ok {
		return ref, nil
	}

	outcome := Outcome{State: TxConfirmed}
	if len(*script) > 0 {
		outcome = (*script)[0]
		*script = (*script)[1:]
	}
	if outcome.SubmitErr != nil {
		return "", outcome.SubmitErr
	}
	if outcome.State == "" {
		outcome.State = TxConfirmed
	}

	m.seq++
	ref := TxRef(fmt.Sprintf("%s-%06d", kind, m.seq))
	m.txs[ref] = &memoryTx{state: outcome.State, pendingPolls: outcome.PendingPolls}
	m.byRequest[kind+":"+requestID] = ref
	return ref, nil
}

func (m *MemoryClient) SubmitMint(ctx context.Context, req MintRequest) (TxRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, err := m.submit("mint", req.RequestID, &m.mintScript)
	if err == nil {
		m.Mints = append(m.Mints, req)
	}
	return ref, err
}

func (m *MemoryClient) SubmitBurn(ctx context.Context, req BurnRequest) (TxRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, err := m.submit("burn", req.RequestID, &m.burnScript)
	if err == nil {
		m.Burns = append(m.Burns, req)
	}
	return ref, err
}

func (m *MemoryClient) TxStatus(ctx context.Context, ref TxRef) (TxState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return "", m.statusErr
	}
	tx, ok := m.txs[ref]
	if !ok {
		return TxNotFound, nil
	}
	if tx.pendingPolls > 0 {
		tx.pendingPolls--
		return TxPending, nil
	}
	return tx.state, nil
}

// Submissions number of recorded mint and burn transactions
func (m *MemoryClient) Submissions() (mints, burns int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Mints), len(m.Burns)
}
