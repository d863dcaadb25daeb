// Package ledger is the transaction-submission port of the token service and its adapters.
//
// Submissions carry a RequestID chosen by the caller for correlation. Nothing here assumes the
// gateway deduplicates on it: a submission whose outcome is unknown is never sent again.
package ledger

import (
	"context"
	"errors"
)

var (
	// ErrSubmission the ledger refused or never received the submission
	ErrSubmission = errors.New("ledger: submission failed")

	// ErrBackpressure the submission queue is full, try again later
	ErrBackpressure = errors.New("ledger: submission queue full")

	// ErrUnknownOutcome the submission may or may not have reached the ledger
	ErrUnknownOutcome = errors.New("ledger: unknown outcome")

	// ErrClosed the client no longer accepts work
	ErrClosed = errors.New("ledger: client closed")

	// ErrNotSent the caller gave up before the submission left this process
	ErrNotSent = errors.New("ledger: submission abandoned before sending")
)

// TxRef opaque ledger transaction reference
type TxRef string

// TxState confirmation state of a submitted transaction
type TxState string

const (
	TxPending   TxState = "pending"
	TxConfirmed TxState = "confirmed"
	TxFailed    TxState = "failed"
	TxNotFound  TxState = "not_found"
)

// MintRequest issue one token to an owner
type MintRequest struct {
	RequestID       string            `json:"requestId"`
	OwnerKey        string            `json:"ownerKey"`
	AssetIdentifier string            `json:"assetIdentifier"`
	Quantity        int64             `json:"quantity"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// BurnRequest destroy tokens held by an owner in one transaction
type BurnRequest struct {
	RequestID        string   `json:"requestId"`
	OwnerKey         string   `json:"ownerKey"`
	AssetIdentifiers []string `json:"assetIdentifiers"`
	Quantity         int64    `json:"quantity"` // negative, one unit per identifier
}

// NewBurnRequest burn of one unit of every identifier
func NewBurnRequest(requestID, ownerKey string, identifiers []string) BurnRequest {
	return BurnRequest{
		RequestID:        requestID,
		OwnerKey:         ownerKey,
		AssetIdentifiers: identifiers,
		Quantity:         -int64(len(identifiers)),
	}
}

// Client ledger submission capability
type Client interface {
	SubmitMint(ctx context.Context, req MintRequest) (TxRef, error)
	SubmitBurn(ctx context.Context, req BurnRequest) (TxRef, error)
	TxStatus(ctx context.Context, ref TxRef) (TxState, error)
}
