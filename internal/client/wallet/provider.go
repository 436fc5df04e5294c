package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"

	"github.com/dmitrijs2005/boardingpass/internal/ethaddr"
)

var (
	ErrNoProvider   = errors.New("no wallet provider available")
	ErrUserRejected = errors.New("user rejected the request")
	ErrNoAccounts   = errors.New("wallet returned no accounts")
)

// CodeUserRejected is the EIP-1193 error code for a declined request.
const CodeUserRejected = 4001

// Provider is the subset of EIP-1193 the onboarding flow uses.
type Provider interface {
	// RequestAccounts prompts the user and returns the active account.
	RequestAccounts(ctx context.Context) (string, error)
	// Accounts returns the authorised accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// RPCProvider speaks JSON-RPC 2.0 over HTTP to a local wallet endpoint.
type RPCProvider struct {
	endpoint string
	http     *retryablehttp.Client
	nextID   atomic.Int64
}

func NewRPCProvider(endpoint string, hc *retryablehttp.Client) *RPCProvider {
	return &RPCProvider{endpoint: endpoint, http: hc}
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) (string, error) {
	accounts, err := p.accounts(ctx, "eth_requestAccounts")
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}
	return accounts[0], nil
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]string, error) {
	return p.accounts(ctx, "eth_accounts")
}

func (p *RPCProvider) accounts(ctx context.Context, method string) ([]string, error) {
	var raw []string
	if err := p.call(ctx, method, &raw); err != nil {
		return nil, err
	}
	return normalize(raw)
}

// normalize checksums every address and drops duplicates, keeping order.
func normalize(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		sum, err := ethaddr.Checksum(a)
		if err != nil {
			return nil, fmt.Errorf("wallet returned %q: %w", a, err)
		}
		out = append(out, sum)
	}
	return lo.Uniq(out), nil
}

func (p *RPCProvider) call(ctx context.Context, method string, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      p.nextID.Add(1),
		Method:  method,
		Params:  []any{},
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", method, err)
		}
		return fmt.Errorf("%w: %v", ErrNoProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrNoProvider, method, resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rr.Error != nil {
		if rr.Error.Code == CodeUserRejected {
			return fmt.Errorf("%w: %s", ErrUserRejected, rr.Error.Message)
		}
		return fmt.Errorf("%s: %w", method, rr.Error)
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
