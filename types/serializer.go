package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// DiscriminatorLength is the number of leading bytes that tag a record kind.
const DiscriminatorLength = 8

var (
	ErrDiscriminatorMismatch = errors.New("record discriminator mismatch")
	ErrInvalidLength         = errors.New("invalid record length")
)

// Serializer encodes records and transactions as fixed-width abi words.
// Every static abi value takes one 32 byte word, so each record kind has a
// constant size.
type Serializer struct {
	typeRegistry               *typeRegistry
	accountHeaderArguments     abi.Arguments
	vaultStateArguments        abi.Arguments
	withdrawalTicketArguments  abi.Arguments
	mintArguments              abi.Arguments
	tokenAccountArguments      abi.Arguments
	eventArguments             abi.Arguments
	initializeArguments        abi.Arguments
	depositArguments           abi.Arguments
	requestWithdrawalArguments abi.Arguments
	claimArguments             abi.Arguments
	setPausedArguments         abi.Arguments
}

func NewSerializer() (*Serializer, error) {
	typeRegistry, err := newTypeRegistry()
	if err != nil {
		return nil, err
	}
	return &Serializer{
		typeRegistry:               typeRegistry,
		accountHeaderArguments:     createAccountHeaderArguments(typeRegistry),
		vaultStateArguments:        createVaultStateArguments(typeRegistry),
		withdrawalTicketArguments:  createWithdrawalTicketArguments(typeRegistry),
		mintArguments:              createMintArguments(typeRegistry),
		tokenAccountArguments:      createTokenAccountArguments(typeRegistry),
		eventArguments:             createEventArguments(typeRegistry),
		initializeArguments:        createInitializeArguments(typeRegistry),
		depositArguments:           createDepositArguments(typeRegistry),
		requestWithdrawalArguments: createRequestWithdrawalArguments(typeRegistry),
		claimArguments:             createClaimArguments(typeRegistry),
		setPausedArguments:         createSetPausedArguments(typeRegistry),
	}, nil
}

func discriminator(name string) []byte {
	return crypto.Keccak256([]byte("account:" + name))[:DiscriminatorLength]
}

func recordSize(args abi.Arguments) int {
	return DiscriminatorLength + 32*len(args)
}

func packRecord(disc []byte, args abi.Arguments, values ...interface{}) ([]byte, error) {
	body, err := args.Pack(values...)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(disc)+len(body))
	data = append(data, disc...)
	return append(data, body...), nil
}

func unpackRecord(disc []byte, args abi.Arguments, data []byte, v interface{}) error {
	if len(data) != recordSize(args) {
		return fmt.Errorf("%w: have %d, want %d", ErrInvalidLength, len(data), recordSize(args))
	}
	if !bytes.Equal(data[:DiscriminatorLength], disc) {
		return ErrDiscriminatorMismatch
	}
	values, err := args.Unpack(data[DiscriminatorLength:])
	if err != nil {
		return err
	}
	return args.Copy(v, values)
}
