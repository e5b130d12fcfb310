// Package registry builds the set of units owned by an account from contract reads.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/amount"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/gateway"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/rate"
	"github.com/goodnatureofminers/beaverfarm-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// ErrOwnedUnitsUnavailable is returned when the owned unit id list could not be read.
var ErrOwnedUnitsUnavailable = errors.New("owned units unavailable")

const defaultWorkerCount = 8

// Outcomes of a single unit detail fetch.
const (
	OutcomeIncluded  = "included"
	OutcomeNotOwned  = "not_owned"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Builder assembles unit registries.
type Builder struct {
	reader      Reader
	metrics     Metrics
	logger      *zap.Logger
	workerCount int
}

// NewBuilder constructs a Builder. A non-positive workerCount uses the default.
func NewBuilder(reader Reader, metrics Metrics, logger *zap.Logger, workerCount int) *Builder {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &Builder{
		reader:      reader,
		metrics:     metrics,
		logger:      logger.Named("registry"),
		workerCount: workerCount,
	}
}

// Build returns the units owned by account, ordered by id, with hourly rates set.
// When the owned id list cannot be read, Build returns an empty registry together with
// an error wrapping ErrOwnedUnitsUnavailable.
func (b *Builder) Build(ctx context.Context, account model.Account) (units []model.Unit, err error) {
	started := time.Now()
	defer func() {
		b.metrics.ObserveBuild(err, len(units), started)
	}()

	raw, err := b.reader.OwnedUnits(ctx, account)
	if err != nil {
		return []model.Unit{}, fmt.Errorf("%w: %w", ErrOwnedUnitsUnavailable, err)
	}
	ids := amount.NormalizeIDs(raw)

	units, err = workerpool.Collect(ctx, b.workerCount, ids, func(ctx context.Context, id uint64) (model.Unit, bool) {
		unit, outcome := b.fetch(ctx, account, id)
		b.metrics.ObserveUnitOutcome(outcome)
		return unit, outcome == OutcomeIncluded
	})
	if err != nil {
		return []model.Unit{}, fmt.Errorf("fetch unit details: %w", err)
	}

	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	rate.Apply(units)
	return units, nil
}

func (b *Builder) fetch(ctx context.Context, account model.Account, id uint64) (model.Unit, string) {
	raw, err := b.reader.UnitDetails(ctx, account, id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotOwner) {
			b.logger.Debug("unit not owned", zap.String("account", account.String()), zap.Uint64("unit_id", id))
			return model.Unit{}, OutcomeNotOwned
		}
		b.logger.Warn("fetch unit details failed",
			zap.String("account", account.String()),
			zap.Uint64("unit_id", id),
			zap.Error(err),
		)
		return model.Unit{}, OutcomeFailed
	}

	unit, err := ParseDetails(id, raw)
	if err != nil {
		b.logger.Debug("malformed unit details", zap.Uint64("unit_id", id), zap.Error(err))
		return model.Unit{}, OutcomeMalformed
	}
	if !unit.Owner.Equal(account) {
		b.logger.Debug("unit owned by another account",
			zap.String("account", account.String()),
			zap.String("owner", unit.Owner.String()),
			zap.Uint64("unit_id", id),
		)
		return model.Unit{}, OutcomeNotOwned
	}
	return unit, OutcomeIncluded
}
