package snapshot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/schedule"
)

// TransferGuard exposes the transfer mechanism's in-flight marker. The
// hook refuses to run unless both accounts are marked as part of an
// ongoing transfer, which prevents spoofed direct calls from forging
// observations.
type TransferGuard interface {
	Transferring(account ledger.ID) bool
}

// Hook applies delta accounting to a pair of balance records on every
// token movement.
type Hook struct {
	sched *schedule.Schedule
	guard TransferGuard
	log   *zap.Logger
}

// NewHook binds a hook to an activated schedule and a transfer guard.
func NewHook(sched *schedule.Schedule, guard TransferGuard, log *zap.Logger) (*Hook, error) {
	if sched == nil {
		return nil, fmt.Errorf("%w: schedule", ErrNilParam)
	}
	if guard == nil {
		return nil, fmt.Errorf("%w: guard", ErrNilParam)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hook{sched: sched, guard: guard, log: log}, nil
}

// OnTransfer records a movement of amount units from src to dst in the
// snapshot window containing now.
//
// The source slot is materialized by backward fill before the delta is
// applied, so a holder that sat still through earlier windows can still
// transfer later; an account that never held anything reconstructs to 0
// and fails the sufficiency check.
func (h *Hook) OnTransfer(src, dst *BalanceRecord, srcAccount, dstAccount ledger.ID, amount uint64, now int64) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%w: balance record", ErrNilParam)
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if !h.guard.Transferring(srcAccount) || !h.guard.Transferring(dstAccount) {
		return fmt.Errorf("%w: %s -> %s", ErrOutsideTransfer, srcAccount, dstAccount)
	}

	idx, err := h.sched.CurrentIndex(now)
	if err != nil {
		if errors.Is(err, schedule.ErrNoActiveSnapshot) {
			return fmt.Errorf("%w: at %d", ErrNoActiveSnapshot, now)
		}
		return err
	}

	srcBalance, err := src.BalanceAt(idx)
	if err != nil {
		return err
	}
	if srcBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientSnapshotBalance, srcBalance, amount)
	}

	dstBalance, err := dst.BalanceAt(idx)
	if err != nil {
		return err
	}

	if err := src.Observe(idx, srcBalance-amount); err != nil {
		return err
	}
	if err := dst.Observe(idx, dstBalance+amount); err != nil {
		return err
	}

	h.log.Debug("snapshot hook applied",
		zap.String("source", srcAccount.String()),
		zap.String("destination", dstAccount.String()),
		zap.Uint64("amount", amount),
		zap.Int("snapshot", idx))
	return nil
}
