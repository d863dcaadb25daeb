package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"
)

// JSON-RPC methods of the token ledger gateway
const (
	methodSubmitMint = "token_submitMint"
	methodSubmitBurn = "token_submitBurn"
	methodTxStatus   = "token_getTransactionStatus"
)

// RPCConfig ledger gateway connection settings
type RPCConfig struct {
	URL           string
	SigningKeyHex string
	Timeout       time.Duration
}

// RPCClient JSON-RPC 2.0 client of the ledger gateway. Every request body is signed with the
// policy key and sent with X-Public-Key and X-Signature headers.
type RPCClient struct {
	url    string
	signer *Signer
	r      *req.Req
	nextID atomic.Int64
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient create gateway client
func NewRPCClient(cfg RPCConfig) (*RPCClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("ledger rpc url is empty")
	}
	signer, err := NewSigner(cfg.SigningKeyHex)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	r := req.New()
	r.SetClient(&http.Client{Timeout: cfg.Timeout})
	return &RPCClient{url: cfg.URL, signer: signer, r: r}, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCError error object returned by the gateway
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

// call send one request. Failures before the request left the process are ErrSubmission;
// failures after it may have been delivered are ErrUnknownOutcome.
func (c *RPCClient) call(ctx context.Context, method string, params ...interface{}) (*gjson.Result, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrSubmission, method, err)
	}

	header := req.Header{
		"Content-Type": "application/json",
		"X-Public-Key": c.signer.PublicKeyHex(),
		"X-Signature":  c.signer.Sign(body),
	}
	resp, err := c.r.Post(c.url, header, body, ctx)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return nil, fmt.Errorf("%w: %s: %v", ErrSubmission, method, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownOutcome, method, err)
	}

	status := resp.Response().StatusCode
	data, err := resp.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrUnknownOutcome, method, err)
	}
	if status >= 500 {
		return nil, fmt.Errorf("%w: %s: http status %d", ErrUnknownOutcome, method, status)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: http status %d", ErrSubmission, method, status)
	}

	parsed := gjson.ParseBytes(data)
	if e := parsed.Get("error"); e.Exists() && e.Type != gjson.Null {
		return nil, fmt.Errorf("%w: %w", ErrSubmission, &RPCError{Code: e.Get("code").Int(), Message: e.Get("message").String()})
	}
	result := parsed.Get("result")
	return &result, nil
}

func (c *RPCClient) SubmitMint(ctx context.Context, mint MintRequest) (TxRef, error) {
	result, err := c.call(ctx, methodSubmitMint, mint)
	if err != nil {
		return "", err
	}
	txid := result.Get("txid").String()
	if txid == "" {
		return "", fmt.Errorf("%w: %s returned no txid", ErrUnknownOutcome, methodSubmitMint)
	}
	return TxRef(txid), nil
}

func (c *RPCClient) SubmitBurn(ctx context.Context, burn BurnRequest) (TxRef, error) {
	result, err := c.call(ctx, methodSubmitBurn, burn)
	if err != nil {
		return "", err
	}
	txid := result.Get("txid").String()
	if txid == "" {
		return "", fmt.Errorf("%w: %s returned no txid", ErrUnknownOutcome, methodSubmitBurn)
	}
	return TxRef(txid), nil
}

// TxStatus any transport failure is returned as is; callers poll again later
func (c *RPCClient) TxStatus(ctx context.Context, ref TxRef) (TxState, error) {
	result, err := c.call(ctx, methodTxStatus, string(ref))
	if err != nil {
		return "", err
	}
	switch state := TxState(result.Get("status").String()); state {
	case TxPending, TxConfirmed, TxFailed, TxNotFound:
		return state, nil
	default:
		return "", fmt.Errorf("ledger rpc: unexpected transaction status %q", state)
	}
}
