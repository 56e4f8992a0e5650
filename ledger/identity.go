package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// KeySize is the length of a compressed secp256k1 public key.
const KeySize = 33

// Key is a caller identity: a compressed secp256k1 public key.
type Key [KeySize]byte

// String returns the hex encoding of the key.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool { return k == Key{} }

// Bytes returns the key as a byte slice.
func (k Key) Bytes() []byte { return k[:] }

// KeyFromBytes parses a compressed public key into a Key, validating
// that it is a point on the curve.
func KeyFromBytes(b []byte) (Key, error) {
	if len(b) != KeySize {
		return Key{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(b))
	}
	if _, err := ec.PublicKeyFromBytes(b); err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// Keypair holds a signing identity.
type Keypair struct {
	priv *ec.PrivateKey
	pub  Key
}

// NewKeypair generates a fresh signing identity.
func NewKeypair() (*Keypair, error) {
	priv, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("ledger: generate keypair: %w", err)
	}
	var pub Key
	copy(pub[:], priv.PubKey().Compressed())
	return &Keypair{priv: priv, pub: pub}, nil
}

// Key returns the public identity of the keypair.
func (kp *Keypair) Key() Key { return kp.pub }

// OpDigest computes the digest that authenticates an operation: the
// sha256 of the operation name followed by its length-prefixed fields.
func OpDigest(name string, fields ...[]byte) []byte {
	seeds := make([][]byte, 0, len(fields)+1)
	seeds = append(seeds, []byte(name))
	seeds = append(seeds, fields...)
	id := DeriveID(seeds...)
	sum := sha256.Sum256(id[:])
	return sum[:]
}

// SignOp signs an operation digest, returning a DER-encoded signature.
func (kp *Keypair) SignOp(digest []byte) ([]byte, error) {
	sig, err := kp.priv.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("ledger: sign operation: %w", err)
	}
	return sig.Serialize(), nil
}

// VerifyOp checks a DER-encoded signature over an operation digest
// against the signer's identity key.
func VerifyOp(signer Key, digest, sigDER []byte) error {
	pub, err := ec.PublicKeyFromBytes(signer[:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	sig, err := ec.ParseDERSignature(sigDER)
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %w", ErrInvalidSignature, err)
	}
	if !sig.Verify(digest, pub) {
		return ErrInvalidSignature
	}
	return nil
}
