package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"go.uber.org/ratelimit"
)

const (
	callPath    = "/call"
	executePath = "/execute"
)

// notOwnerPhrases are revert reasons the game contract uses for ownership checks.
var notOwnerPhrases = []string{
	"not owner",
	"not the owner",
	"not your beaver",
	"caller is not owner",
}

// Opts is the set of options for a new Client.
type Opts struct {
	Endpoints       []string
	Timeout         time.Duration
	RPS             int
	BreakerFailures int
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
}

// Client is a gateway HTTP client with endpoint failover, a per-endpoint circuit breaker and a rate limiter.
type Client struct {
	endpoints []string
	client    *http.Client
	rl        ratelimit.Limiter
	now       func() time.Time

	mu       sync.Mutex
	failures map[string]int
	opened   map[string]time.Time

	breakerThreshold int
	breakerCooldown  time.Duration
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error,omitempty"`
}

type executeRequest struct {
	Account string `json:"account"`
	Calls   []Call `json:"calls"`
}

type executeResponse struct {
	TransactionHash string    `json:"transaction_hash"`
	Error           *apiError `json:"error,omitempty"`
}

// NewClient creates a Client with the given options.
func NewClient(o Opts) *Client {
	if o.RPS <= 0 {
		o.RPS = 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = 3
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 5 * time.Second
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}

	return &Client{
		endpoints:        dedup(o.Endpoints),
		client:           client,
		rl:               ratelimit.New(o.RPS),
		now:              time.Now,
		failures:         map[string]int{},
		opened:           map[string]time.Time{},
		breakerThreshold: o.BreakerFailures,
		breakerCooldown:  o.BreakerCooldown,
	}
}

// Call performs a read call. The result is decoded with json.Number for numbers and is not reshaped.
func (c *Client) Call(ctx context.Context, call Call) (any, error) {
	var resp callResponse
	if err := c.doJSON(ctx, callPath, call, &resp, anyFailure); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, classify(resp.Error, ErrCallFailed)
	}
	if len(resp.Result) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Result))
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", call.EntryPoint, err)
	}
	return result, nil
}

// Execute submits calls as one transaction. Calls run in order and either all apply or none do.
// A batch goes to the next endpoint only when the previous one could not be reached at all.
func (c *Client) Execute(ctx context.Context, account model.Account, calls []Call) (string, error) {
	if len(calls) == 0 {
		return "", fmt.Errorf("%w: empty call batch", ErrRejected)
	}
	var resp executeResponse
	req := executeRequest{Account: account.String(), Calls: calls}
	if err := c.doJSON(ctx, executePath, req, &resp, notSent); err != nil {
		var epErr *endpointError
		if errors.As(err, &epErr) && epErr.sent {
			return "", fmt.Errorf("%w: %w", ErrSubmitUncertain, err)
		}
		return "", err
	}
	if resp.Error != nil {
		return "", classify(resp.Error, ErrRejected)
	}
	if resp.TransactionHash == "" {
		return "", fmt.Errorf("%w: missing transaction hash", ErrRejected)
	}
	return resp.TransactionHash, nil
}

// endpointError is a failed attempt against one endpoint. Sent is false when the connection
// could not be opened, so the endpoint never saw the request.
type endpointError struct {
	endpoint string
	sent     bool
	err      error
}

func (e *endpointError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.endpoint, e.err)
}

func (e *endpointError) Unwrap() error {
	return e.err
}

// failoverPolicy reports whether a failed attempt may be repeated on the next endpoint.
type failoverPolicy func(e *endpointError) bool

// anyFailure retries reads on every endpoint failure.
func anyFailure(*endpointError) bool { return true }

// notSent retries only attempts that never reached the endpoint. A write batch that may have been
// received is never submitted twice.
func notSent(e *endpointError) bool { return !e.sent }

// doJSON posts payload to path on the first healthy endpoint and decodes the JSON body into out.
// Transport failures and 5xx responses trip the endpoint's breaker; canFailover decides whether the
// next endpoint is tried. Cancellation by the caller is returned as is and does not count against
// the endpoint.
func (c *Client) doJSON(ctx context.Context, path string, payload any, out any, canFailover failoverPolicy) error {
	if len(c.endpoints) == 0 {
		return ErrNoEndpoints
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	lastErr := fmt.Errorf("all gateway endpoints unavailable")
	for _, ep := range c.endpoints {
		if c.isOpen(ep) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		c.rl.Take()

		err := c.post(ctx, ep, path, body, out)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var epErr *endpointError
		if !errors.As(err, &epErr) {
			return err
		}
		c.noteFailure(ep)
		lastErr = err
		if !canFailover(epErr) {
			return err
		}
	}
	return lastErr
}

// post performs one attempt. Endpoint failures come back as *endpointError.
func (c *Client) post(ctx context.Context, ep, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &endpointError{endpoint: ep, sent: !isDialError(err), err: err}
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &endpointError{endpoint: ep, sent: true, err: fmt.Errorf("server %d", resp.StatusCode)}
	}
	if readErr != nil {
		return &endpointError{endpoint: ep, sent: true, err: readErr}
	}
	c.noteSuccess(ep)

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("%w: http %d", ErrCallFailed, resp.StatusCode)
		}
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) isOpen(ep string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.opened[ep]
	if !ok {
		return false
	}
	if c.now().After(until) {
		delete(c.opened, ep)
		c.failures[ep] = 0
		return false
	}
	return true
}

func (c *Client) noteFailure(ep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ep]++
	if c.failures[ep] >= c.breakerThreshold {
		c.opened[ep] = c.now().Add(c.breakerCooldown)
	}
}

func (c *Client) noteSuccess(ep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ep] = 0
}

func classify(e *apiError, base error) error {
	msg := strings.ToLower(e.Message)
	for _, phrase := range notOwnerPhrases {
		if strings.Contains(msg, phrase) {
			return fmt.Errorf("%w: %s", ErrNotOwner, e.Message)
		}
	}
	return fmt.Errorf("%w: code %d: %s", base, e.Code, e.Message)
}

func dedup(endpoints []string) []string {
	seen := make(map[string]struct{}, len(endpoints))
	out := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		ep = strings.TrimRight(strings.TrimSpace(ep), "/")
		if ep == "" {
			continue
		}
		if _, ok := seen[ep]; ok {
			continue
		}
		seen[ep] = struct{}{}
		out = append(out, ep)
	}
	return out
}
