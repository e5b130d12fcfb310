// Package gateway talks to the contract call gateway: read calls, ordered write batches, error mapping.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

var (
	// ErrNotOwner reports the contract refused a unit read because the unit belongs to another account.
	ErrNotOwner = errors.New("unit not owned by account")
	// ErrCallFailed reports a read call the contract or gateway rejected.
	ErrCallFailed = errors.New("contract call failed")
	// ErrRejected reports a write batch that was not accepted.
	ErrRejected = errors.New("transaction rejected")
	// ErrSubmitUncertain reports a write batch that reached an endpoint without a usable answer.
	// It may or may not have been applied and is not resubmitted.
	ErrSubmitUncertain = errors.New("transaction submission outcome unknown")
	// ErrNoEndpoints reports a client built without endpoints.
	ErrNoEndpoints = errors.New("no gateway endpoints configured")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Caller performs a single read-only contract call and returns the decoded result as is.
	Caller interface {
		Call(ctx context.Context, call Call) (any, error)
	}
	// Executor submits an ordered batch of calls as one transaction and returns its hash.
	Executor interface {
		Execute(ctx context.Context, account model.Account, calls []Call) (string, error)
	}
	// ReadAPI is the typed read surface of the game and token contracts.
	ReadAPI interface {
		TokenBalance(ctx context.Context, token string, account model.Account) (any, error)
		OwnedUnits(ctx context.Context, account model.Account) (any, error)
		UnitDetails(ctx context.Context, account model.Account, id uint64) (any, error)
		PendingRewards(ctx context.Context, account model.Account) (any, error)
	}
	// RPCMetrics records metrics for gateway calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Call is one contract invocation.
type Call struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point"`
	Calldata        []string `json:"calldata"`
}

// Contracts holds the addresses the service reads from and writes to.
type Contracts struct {
	Game         string
	PaymentToken string
	RewardToken  string
}

// EntryPoints names the contract functions used by the service.
type EntryPoints struct {
	BalanceOf      string
	OwnedUnits     string
	UnitDetails    string
	PendingRewards string
	Approve        string
	Claim          string
	Stake          string
	Upgrade        string
}

// DefaultEntryPoints returns the entry point names of the deployed game contract.
func DefaultEntryPoints() EntryPoints {
	return EntryPoints{
		BalanceOf:      "balanceOf",
		OwnedUnits:     "get_user_beavers",
		UnitDetails:    "get_beaver",
		PendingRewards: "calculate_pending_rewards",
		Approve:        "approve",
		Claim:          "claim_rewards",
		Stake:          "stake_beaver",
		Upgrade:        "upgrade_beaver",
	}
}
