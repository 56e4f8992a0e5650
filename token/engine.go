// Package token implements the in-process token engine the product
// settles over: mints with a fixed authority, owner-keyed accounts, and
// signed transfers that invoke the mint's transfer hook synchronously.
//
// Every balance movement is authenticated: the caller signs the
// operation digest with the key owning the source account (or the mint
// authority, for issuance). The engine marks both accounts as in-flight
// for the duration of a transfer, which is what lets the snapshot hook
// reject observations forged outside a real transfer.
package token

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/brcfi/libbrc-go/ledger"
	"github.com/brcfi/libbrc-go/snapshot"
)

// Mint is one token issue.
type Mint struct {
	ID        ledger.ID
	Authority ledger.Key
	Decimals  uint8
	Supply    uint64
}

// Account is one holder's balance in a mint. Its ID is derived from the
// mint and owner, so each owner holds at most one account per mint.
type Account struct {
	ID      ledger.ID
	Mint    ledger.ID
	Owner   ledger.Key
	Balance uint64
}

// TransferHook observes every transfer of a mint before the balances
// move. A hook error aborts the transfer.
type TransferHook interface {
	OnTokenTransfer(src, dst ledger.ID, amount uint64, now int64) error
}

// Engine holds the mints and accounts of one deployment.
type Engine struct {
	mu       sync.Mutex
	mints    map[ledger.ID]*Mint
	accounts map[ledger.ID]*Account
	hooks    map[ledger.ID]TransferHook

	inflightMu sync.Mutex
	inflight   map[ledger.ID]int

	log *zap.Logger
}

// Engine doubles as the snapshot hook's transfer guard.
var _ snapshot.TransferGuard = (*Engine)(nil)

// NewEngine creates an empty engine. A nil logger disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		mints:    make(map[ledger.ID]*Mint),
		accounts: make(map[ledger.ID]*Account),
		hooks:    make(map[ledger.ID]TransferHook),
		inflight: make(map[ledger.ID]int),
		log:      log,
	}
}

// MintID derives the deterministic ID of a mint from its seed.
func MintID(seed []byte) ledger.ID {
	return ledger.DeriveID([]byte("mint"), seed)
}

// AccountID derives the deterministic ID of owner's account in mint.
func AccountID(mint ledger.ID, owner ledger.Key) ledger.ID {
	return ledger.DeriveID([]byte("account"), mint[:], owner[:])
}

// SubAccountID derives the ID of a seeded account.
func SubAccountID(mint ledger.ID, owner ledger.Key, seed []byte) ledger.ID {
	return ledger.DeriveID([]byte("account"), mint[:], owner[:], seed)
}

// MintDigest builds the digest a mint authority signs to issue amount
// units into dst.
func MintDigest(dst ledger.ID, amount uint64) []byte {
	return ledger.OpDigest("token.mint_to", dst[:], amountBytes(amount))
}

// TransferDigest builds the digest an owner signs to move amount units
// from src to dst.
func TransferDigest(src, dst ledger.ID, amount uint64) []byte {
	return ledger.OpDigest("token.transfer", src[:], dst[:], amountBytes(amount))
}

func amountBytes(amount uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], amount)
	return b[:]
}

// CreateMint registers a new mint under authority.
func (e *Engine) CreateMint(authority ledger.Key, decimals uint8, seed []byte) (ledger.ID, error) {
	id := MintID(seed)
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.mints[id]; ok {
		return ledger.ID{}, fmt.Errorf("%w: %s", ErrMintExists, id)
	}
	e.mints[id] = &Mint{ID: id, Authority: authority, Decimals: decimals}
	e.log.Debug("mint created", zap.String("mint", id.String()), zap.String("authority", authority.String()))
	return id, nil
}

// SetTransferHook binds the hook invoked on every transfer of mint.
func (e *Engine) SetTransferHook(mint ledger.ID, hook TransferHook) error {
	if hook == nil {
		return fmt.Errorf("%w: hook", ErrNilParam)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.mints[mint]; !ok {
		return fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	e.hooks[mint] = hook
	return nil
}

// Hooked reports whether mint carries a transfer hook.
func (e *Engine) Hooked(mint ledger.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hooks[mint] != nil
}

// CreateAccount opens owner's account in mint.
func (e *Engine) CreateAccount(mint ledger.ID, owner ledger.Key) (ledger.ID, error) {
	return e.createAccount(AccountID(mint, owner), mint, owner)
}

// CreateSubAccount opens an additional account for owner in mint,
// distinguished by seed. Custody accounts use this so one owner can
// hold funds earmarked for different purposes in the same mint.
func (e *Engine) CreateSubAccount(mint ledger.ID, owner ledger.Key, seed []byte) (ledger.ID, error) {
	return e.createAccount(SubAccountID(mint, owner, seed), mint, owner)
}

func (e *Engine) createAccount(id, mint ledger.ID, owner ledger.Key) (ledger.ID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.mints[mint]; !ok {
		return ledger.ID{}, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if _, ok := e.accounts[id]; ok {
		return ledger.ID{}, fmt.Errorf("%w: %s", ErrAccountExists, id)
	}
	e.accounts[id] = &Account{ID: id, Mint: mint, Owner: owner}
	return id, nil
}

// Account returns a copy of the account record.
func (e *Engine) Account(id ledger.ID) (Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	acc, ok := e.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return *acc, nil
}

// Balance returns the account's current balance.
func (e *Engine) Balance(id ledger.ID) (uint64, error) {
	acc, err := e.Account(id)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Supply returns the mint's outstanding supply.
func (e *Engine) Supply(mint ledger.ID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.mints[mint]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return m.Supply, nil
}

// Transferring reports whether account is part of an ongoing transfer.
func (e *Engine) Transferring(account ledger.ID) bool {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	return e.inflight[account] > 0
}

func (e *Engine) markInflight(accounts ...ledger.ID) {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	for _, a := range accounts {
		e.inflight[a]++
	}
}

func (e *Engine) clearInflight(accounts ...ledger.ID) {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	for _, a := range accounts {
		if e.inflight[a] <= 1 {
			delete(e.inflight, a)
		} else {
			e.inflight[a]--
		}
	}
}

// MintTo issues amount units into dst. The caller must be the mint
// authority and sign MintDigest(dst, amount). Issuance does not run the
// transfer hook; seeding snapshot state at issuance is the product
// controller's job.
func (e *Engine) MintTo(caller ledger.Key, sig []byte, dst ledger.ID, amount uint64, now int64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	acc, ok := e.accounts[dst]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, dst)
	}
	m := e.mints[acc.Mint]
	if caller != m.Authority {
		return fmt.Errorf("%w: %s is not the mint authority", ErrUnauthorized, caller)
	}
	if err := ledger.VerifyOp(caller, MintDigest(dst, amount), sig); err != nil {
		return err
	}
	if m.Supply > math.MaxUint64-amount {
		return fmt.Errorf("%w: supply %d + %d", ErrSupplyOverflow, m.Supply, amount)
	}

	m.Supply += amount
	acc.Balance += amount
	e.log.Debug("minted",
		zap.String("mint", m.ID.String()),
		zap.String("account", dst.String()),
		zap.Uint64("amount", amount),
		zap.Int64("at", now))
	return nil
}

// Transfer moves amount units from src to dst. The caller must own src
// and sign TransferDigest(src, dst, amount). The mint's hook runs with
// both accounts marked in-flight before balances move; a hook error
// aborts the transfer with balances untouched.
func (e *Engine) Transfer(owner ledger.Key, sig []byte, src, dst ledger.ID, amount uint64, now int64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if src == dst {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, src)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	from, ok := e.accounts[src]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrAccountNotFound, src)
	}
	to, ok := e.accounts[dst]
	if !ok {
		return fmt.Errorf("%w: destination %s", ErrAccountNotFound, dst)
	}
	if from.Mint != to.Mint {
		return fmt.Errorf("%w: %s -> %s", ErrMintMismatch, from.Mint, to.Mint)
	}
	if owner != from.Owner {
		return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, owner, src)
	}
	if err := ledger.VerifyOp(owner, TransferDigest(src, dst, amount), sig); err != nil {
		return err
	}
	if from.Balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, from.Balance, amount)
	}

	if hook := e.hooks[from.Mint]; hook != nil {
		e.markInflight(src, dst)
		err := hook.OnTokenTransfer(src, dst, amount, now)
		e.clearInflight(src, dst)
		if err != nil {
			return fmt.Errorf("token: transfer hook: %w", err)
		}
	}

	from.Balance -= amount
	to.Balance += amount
	e.log.Debug("transferred",
		zap.String("source", src.String()),
		zap.String("destination", dst.String()),
		zap.Uint64("amount", amount),
		zap.Int64("at", now))
	return nil
}
