package exchange

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs exchange actions with a secp256k1 key. In agent mode
// the signing key differs from the account the orders act on.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex private key (with or without 0x prefix).
func NewSigner(hexKey string) (*Signer, error) {
	k := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(k)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the wallet address of the signing key.
func (s *Signer) Address() common.Address {
	return s.address
}

// Signature is the r/s/v form the exchange API expects.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V int    `json:"v"`
}

// SignAction produces a recoverable signature over the keccak digest
// of the serialized action bound to its nonce, so a captured request
// cannot be replayed with a different action or time.
func (s *Signer) SignAction(action any, nonce int64) (Signature, error) {
	payload, err := json.Marshal(action)
	if err != nil {
		return Signature{}, fmt.Errorf("marshal action: %w", err)
	}

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], uint64(nonce))

	digest := crypto.Keccak256(payload, nonceBuf[:])
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return Signature{}, fmt.Errorf("sign action: %w", err)
	}

	return Signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: int(sig[64]) + 27,
	}, nil
}
