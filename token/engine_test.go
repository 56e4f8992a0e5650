package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcfi/libbrc-go/ledger"
)

type fixture struct {
	engine    *Engine
	authority *ledger.Keypair
	alice     *ledger.Keypair
	bob       *ledger.Keypair
	mint      ledger.ID
	aliceAcc  ledger.ID
	bobAcc    ledger.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{engine: NewEngine(nil)}
	var err error
	f.authority, err = ledger.NewKeypair()
	require.NoError(t, err)
	f.alice, err = ledger.NewKeypair()
	require.NoError(t, err)
	f.bob, err = ledger.NewKeypair()
	require.NoError(t, err)

	f.mint, err = f.engine.CreateMint(f.authority.Key(), 0, []byte("unit"))
	require.NoError(t, err)
	f.aliceAcc, err = f.engine.CreateAccount(f.mint, f.alice.Key())
	require.NoError(t, err)
	f.bobAcc, err = f.engine.CreateAccount(f.mint, f.bob.Key())
	require.NoError(t, err)
	return f
}

func (f *fixture) mintTo(t *testing.T, dst ledger.ID, amount uint64) {
	t.Helper()
	sig, err := f.authority.SignOp(MintDigest(dst, amount))
	require.NoError(t, err)
	require.NoError(t, f.engine.MintTo(f.authority.Key(), sig, dst, amount, 0))
}

func (f *fixture) transfer(t *testing.T, owner *ledger.Keypair, src, dst ledger.ID, amount uint64, now int64) error {
	t.Helper()
	sig, err := owner.SignOp(TransferDigest(src, dst, amount))
	require.NoError(t, err)
	return f.engine.Transfer(owner.Key(), sig, src, dst, amount, now)
}

func TestEngine_CreateMint(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateMint(f.authority.Key(), 0, []byte("unit"))
	assert.ErrorIs(t, err, ErrMintExists)

	other, err := f.engine.CreateMint(f.authority.Key(), 2, []byte("cash"))
	require.NoError(t, err)
	assert.NotEqual(t, f.mint, other)
}

func TestEngine_CreateAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateAccount(ledger.DeriveID([]byte("nope")), f.alice.Key())
	assert.ErrorIs(t, err, ErrMintNotFound)

	_, err = f.engine.CreateAccount(f.mint, f.alice.Key())
	assert.ErrorIs(t, err, ErrAccountExists)

	// Seeded accounts let one owner hold several accounts per mint.
	sub, err := f.engine.CreateSubAccount(f.mint, f.alice.Key(), []byte("escrow"))
	require.NoError(t, err)
	assert.NotEqual(t, f.aliceAcc, sub)
	_, err = f.engine.CreateSubAccount(f.mint, f.alice.Key(), []byte("escrow"))
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestEngine_MintTo(t *testing.T) {
	f := newFixture(t)

	sig, err := f.authority.SignOp(MintDigest(f.aliceAcc, 100))
	require.NoError(t, err)

	err = f.engine.MintTo(f.authority.Key(), sig, ledger.DeriveID([]byte("nope")), 100, 0)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = f.engine.MintTo(f.authority.Key(), sig, f.aliceAcc, 0, 0)
	assert.ErrorIs(t, err, ErrZeroAmount)

	err = f.engine.MintTo(f.alice.Key(), sig, f.aliceAcc, 100, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Authority key with someone else's signature.
	forged, err := f.alice.SignOp(MintDigest(f.aliceAcc, 100))
	require.NoError(t, err)
	err = f.engine.MintTo(f.authority.Key(), forged, f.aliceAcc, 100, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidSignature)

	require.NoError(t, f.engine.MintTo(f.authority.Key(), sig, f.aliceAcc, 100, 0))
	balance, err := f.engine.Balance(f.aliceAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)
	supply, err := f.engine.Supply(f.mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), supply)
}

func TestEngine_Transfer(t *testing.T) {
	f := newFixture(t)
	f.mintTo(t, f.aliceAcc, 100)

	require.NoError(t, f.transfer(t, f.alice, f.aliceAcc, f.bobAcc, 30, 0))

	balance, err := f.engine.Balance(f.aliceAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), balance)
	balance, err = f.engine.Balance(f.bobAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), balance)

	err = f.transfer(t, f.alice, f.aliceAcc, f.bobAcc, 71, 0)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = f.transfer(t, f.alice, f.aliceAcc, f.aliceAcc, 10, 0)
	assert.ErrorIs(t, err, ErrSelfTransfer)
}

func TestEngine_TransferAuth(t *testing.T) {
	f := newFixture(t)
	f.mintTo(t, f.aliceAcc, 100)

	// Bob cannot move Alice's funds.
	err := f.transfer(t, f.bob, f.aliceAcc, f.bobAcc, 10, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Alice's key with Bob's signature.
	forged, err := f.bob.SignOp(TransferDigest(f.aliceAcc, f.bobAcc, 10))
	require.NoError(t, err)
	err = f.engine.Transfer(f.alice.Key(), forged, f.aliceAcc, f.bobAcc, 10, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidSignature)

	// A signature over a different amount does not transfer.
	sig, err := f.alice.SignOp(TransferDigest(f.aliceAcc, f.bobAcc, 10))
	require.NoError(t, err)
	err = f.engine.Transfer(f.alice.Key(), sig, f.aliceAcc, f.bobAcc, 99, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidSignature)
}

func TestEngine_TransferMintMismatch(t *testing.T) {
	f := newFixture(t)
	f.mintTo(t, f.aliceAcc, 100)

	cash, err := f.engine.CreateMint(f.authority.Key(), 2, []byte("cash"))
	require.NoError(t, err)
	cashAcc, err := f.engine.CreateAccount(cash, f.bob.Key())
	require.NoError(t, err)

	err = f.transfer(t, f.alice, f.aliceAcc, cashAcc, 10, 0)
	assert.ErrorIs(t, err, ErrMintMismatch)
}

type spyHook struct {
	engine *Engine
	calls  int
	marked bool
	err    error
}

func (h *spyHook) OnTokenTransfer(src, dst ledger.ID, amount uint64, now int64) error {
	h.calls++
	h.marked = h.engine.Transferring(src) && h.engine.Transferring(dst)
	return h.err
}

func TestEngine_TransferHook(t *testing.T) {
	f := newFixture(t)
	f.mintTo(t, f.aliceAcc, 100)

	hook := &spyHook{engine: f.engine}
	require.NoError(t, f.engine.SetTransferHook(f.mint, hook))

	require.NoError(t, f.transfer(t, f.alice, f.aliceAcc, f.bobAcc, 30, 0))
	assert.Equal(t, 1, hook.calls)
	assert.True(t, hook.marked, "both accounts must be in-flight while the hook runs")
	assert.False(t, f.engine.Transferring(f.aliceAcc), "markers must clear after the transfer")
	assert.False(t, f.engine.Transferring(f.bobAcc))
}

func TestEngine_TransferHookAborts(t *testing.T) {
	f := newFixture(t)
	f.mintTo(t, f.aliceAcc, 100)

	hook := &spyHook{engine: f.engine, err: assert.AnError}
	require.NoError(t, f.engine.SetTransferHook(f.mint, hook))

	err := f.transfer(t, f.alice, f.aliceAcc, f.bobAcc, 30, 0)
	require.Error(t, err)

	balance, err := f.engine.Balance(f.aliceAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance, "a failed hook must leave balances untouched")
	assert.False(t, f.engine.Transferring(f.aliceAcc))
}

func TestEngine_Hooked(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.engine.Hooked(f.mint))
	require.NoError(t, f.engine.SetTransferHook(f.mint, &spyHook{engine: f.engine}))
	assert.True(t, f.engine.Hooked(f.mint))
}

func TestEngine_HookRequiresMint(t *testing.T) {
	f := newFixture(t)
	err := f.engine.SetTransferHook(ledger.DeriveID([]byte("nope")), &spyHook{engine: f.engine})
	assert.ErrorIs(t, err, ErrMintNotFound)
}
