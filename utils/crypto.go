package utils

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

func SigIsValid(signer common.Address, data []byte, sig []byte) bool {
	recoveredAddr, err := RecoverSigner(data, sig)
	return err == nil && recoveredAddr == signer
}

// RecoverSigner returns the address whose key produced sig over data, as
// signed by SignData.
func RecoverSigner(data []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	pubKey, err := crypto.SigToPub(generatePrefixedHash(data), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

func GetPrivateKeyFromKeystore(path string, password string) (*ecdsa.PrivateKey, error) {
	ksBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(ksBytes, password)
	if err != nil {
		return nil, err
	}
	return key.PrivateKey, nil
}

// NewKeystoreKey generates a key and stores it encrypted under dir, returning
// the key file path.
func NewKeystoreKey(dir string, password string) (common.Address, string, error) {
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	account, err := ks.NewAccount(password)
	if err != nil {
		return common.Address{}, "", err
	}
	return account.Address, account.URL.Path, nil
}

func SignData(privateKey *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	return crypto.Sign(generatePrefixedHash(data), privateKey)
}

func generatePrefixedHash(data []byte) []byte {
	return crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), crypto.Keccak256(data))
}
