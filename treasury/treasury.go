// Package treasury implements the product's funding wallet: a signing
// identity that owns custody token accounts and releases funds only to
// callers its owner has authorized.
package treasury

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/token"
)

var (
	// ErrUnauthorized indicates a caller without the required grant.
	ErrUnauthorized = errors.New("treasury: unauthorized")

	// ErrAlreadyAuthorized indicates a duplicate grant.
	ErrAlreadyAuthorized = errors.New("treasury: already authorized")

	// ErrNotAuthorized indicates revoking a grant that does not exist.
	ErrNotAuthorized = errors.New("treasury: not authorized")

	// ErrNotCustody indicates a withdrawal from an account the treasury
	// does not own.
	ErrNotCustody = errors.New("treasury: source is not a custody account")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("treasury: nil parameter")
)

// Wallet is one treasury. It holds its own keypair so custody accounts
// are owned by the treasury itself, not by its administrator; the owner
// key only manages the authorization set.
type Wallet struct {
	mu         sync.Mutex
	owner      ledger.Key
	signer     *ledger.Keypair
	authorized map[ledger.Key]bool
	log        *zap.Logger
}

// NewWallet creates a treasury administered by owner with a fresh
// signing identity. A nil logger disables logging.
func NewWallet(owner ledger.Key, log *zap.Logger) (*Wallet, error) {
	signer, err := ledger.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("treasury: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wallet{
		owner:      owner,
		signer:     signer,
		authorized: make(map[ledger.Key]bool),
		log:        log,
	}, nil
}

// ID returns the treasury's record ID.
func (w *Wallet) ID() ledger.ID {
	return ledger.DeriveID([]byte("treasury"), w.signer.Key().Bytes())
}

// Key returns the treasury's own identity, the owner of its custody
// accounts.
func (w *Wallet) Key() ledger.Key { return w.signer.Key() }

// Owner returns the administrator key.
func (w *Wallet) Owner() ledger.Key { return w.owner }

// Authorize grants authority the right to withdraw. Only the owner may
// grant.
func (w *Wallet) Authorize(caller, authority ledger.Key) error {
	if caller != w.owner {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.authorized[authority] {
		return fmt.Errorf("%w: %s", ErrAlreadyAuthorized, authority)
	}
	w.authorized[authority] = true
	w.log.Info("withdraw authority granted", zap.String("authority", authority.String()))
	return nil
}

// Revoke removes a grant. Only the owner may revoke.
func (w *Wallet) Revoke(caller, authority ledger.Key) error {
	if caller != w.owner {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.authorized[authority] {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, authority)
	}
	delete(w.authorized, authority)
	w.log.Info("withdraw authority revoked", zap.String("authority", authority.String()))
	return nil
}

// Authorized reports whether key holds a withdraw grant.
func (w *Wallet) Authorized(key ledger.Key) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.authorized[key]
}

// WithdrawDigest builds the digest an authorized caller signs to pull
// amount units from src into dst.
func WithdrawDigest(src, dst ledger.ID, amount uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], amount)
	return ledger.OpDigest("treasury.withdraw", src[:], dst[:], b[:])
}

// Withdraw moves amount units from the treasury's custody account src
// into dst. The caller must hold a withdraw grant and sign
// WithdrawDigest(src, dst, amount); the treasury itself signs the
// underlying token transfer.
func (w *Wallet) Withdraw(engine *token.Engine, caller ledger.Key, sig []byte, src, dst ledger.ID, amount uint64, now int64) error {
	if engine == nil {
		return fmt.Errorf("%w: engine", ErrNilParam)
	}
	if !w.Authorized(caller) {
		return fmt.Errorf("%w: %s holds no withdraw grant", ErrUnauthorized, caller)
	}
	if err := ledger.VerifyOp(caller, WithdrawDigest(src, dst, amount), sig); err != nil {
		return err
	}

	acc, err := engine.Account(src)
	if err != nil {
		return err
	}
	if acc.Owner != w.signer.Key() {
		return fmt.Errorf("%w: %s", ErrNotCustody, src)
	}

	transferSig, err := w.signer.SignOp(token.TransferDigest(src, dst, amount))
	if err != nil {
		return err
	}
	if err := engine.Transfer(w.signer.Key(), transferSig, src, dst, amount, now); err != nil {
		return err
	}

	w.log.Info("withdrawal",
		zap.String("caller", caller.String()),
		zap.String("source", src.String()),
		zap.String("destination", dst.String()),
		zap.Uint64("amount", amount))
	return nil
}
