package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// NormalizeAddress valida y devuelve la dirección en minúsculas.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// RecoverAddress recupera la dirección que firmó message con el esquema
// personal_sign (EIP-191). La firma llega en hex de 65 bytes.
func RecoverAddress(message, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", ErrInvalidSignature)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be 65 bytes: %w", ErrInvalidSignature)
	}

	// Los wallets devuelven V como 27/28; crypto espera 0/1.
	recovery := make([]byte, crypto.SignatureLength)
	copy(recovery, sig)
	if recovery[64] >= 27 {
		recovery[64] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), recovery)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", ErrInvalidSignature)
	}

	return strings.ToLower(crypto.PubkeyToAddress(*pubKey).Hex()), nil
}

// VerifySignature comprueba que la firma sobre message proviene de address.
// La comparación de direcciones no distingue mayúsculas.
func VerifySignature(message, signatureHex, address string) error {
	recovered, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return err
	}
	if !strings.EqualFold(recovered, address) {
		return ErrInvalidSignature
	}
	return nil
}
