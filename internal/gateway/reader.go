package gateway

import (
	"context"
	"strconv"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

// Reader maps the typed read surface onto contract calls.
type Reader struct {
	caller      Caller
	contracts   Contracts
	entryPoints EntryPoints
}

// NewReader constructs a Reader.
func NewReader(caller Caller, contracts Contracts, entryPoints EntryPoints) *Reader {
	return &Reader{caller: caller, contracts: contracts, entryPoints: entryPoints}
}

// TokenBalance reads the balance of account on the token contract.
func (r *Reader) TokenBalance(ctx context.Context, token string, account model.Account) (any, error) {
	return r.caller.Call(ctx, Call{
		ContractAddress: token,
		EntryPoint:      r.entryPoints.BalanceOf,
		Calldata:        []string{account.Hash().Hex()},
	})
}

// OwnedUnits reads the ids of the units owned by account.
func (r *Reader) OwnedUnits(ctx context.Context, account model.Account) (any, error) {
	return r.caller.Call(ctx, Call{
		ContractAddress: r.contracts.Game,
		EntryPoint:      r.entryPoints.OwnedUnits,
		Calldata:        []string{account.Hash().Hex()},
	})
}

// UnitDetails reads one unit as seen by account.
func (r *Reader) UnitDetails(ctx context.Context, account model.Account, id uint64) (any, error) {
	return r.caller.Call(ctx, Call{
		ContractAddress: r.contracts.Game,
		EntryPoint:      r.entryPoints.UnitDetails,
		Calldata:        []string{account.Hash().Hex(), Felt(id)},
	})
}

// PendingRewards reads the aggregate pending reward of account.
func (r *Reader) PendingRewards(ctx context.Context, account model.Account) (any, error) {
	return r.caller.Call(ctx, Call{
		ContractAddress: r.contracts.Game,
		EntryPoint:      r.entryPoints.PendingRewards,
		Calldata:        []string{account.Hash().Hex()},
	})
}

// Felt renders an unsigned integer as 0x-prefixed hex call data.
func Felt(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}
