package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Signer signs ledger gateway requests with the token policy key
type Signer struct {
	priv *btcec.PrivateKey
	pub  *btcec.PublicKey
}

// NewSigner load a secp256k1 private key from hex
func NewSigner(keyHex string) (*Signer, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("signing key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(raw))
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	return &Signer{priv: priv, pub: pub}, nil
}

// PublicKeyHex compressed public key
func (s *Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.pub.SerializeCompressed())
}

// Sign DER signature over the double SHA-256 of body
func (s *Signer) Sign(body []byte) string {
	digest := chainhash.DoubleHashB(body)
	return hex.EncodeToString(ecdsa.Sign(s.priv, digest).Serialize())
}

// VerifySignature check a signature produced by Sign
func VerifySignature(pubKeyHex, sigHex string, body []byte) bool {
	pubRaw, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(pubRaw)
	if err != nil {
		return false
	}
	sigRaw, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigRaw)
	if err != nil {
		return false
	}
	return sig.Verify(chainhash.DoubleHashB(body), pub)
}
