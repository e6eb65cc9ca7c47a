package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var ErrUnknownTransactionType = errors.New("unknown transaction type")

type TransactionType uint8

const (
	TransactionTypeInitialize TransactionType = iota
	TransactionTypeDeposit
	TransactionTypeRequestWithdrawal
	TransactionTypeClaim
	TransactionTypeSetPaused
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeInitialize:
		return "initialize"
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeRequestWithdrawal:
		return "request_withdrawal"
	case TransactionTypeClaim:
		return "claim"
	case TransactionTypeSetPaused:
		return "set_paused"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Transaction is a request against a vault. Actor is the identity whose nonce
// the transaction consumes.
type Transaction interface {
	GetTransactionType() TransactionType
	Actor() common.Address
	GetNonce() uint64
}

type InitializeTransaction struct {
	Admin        common.Address
	AcceptedMint common.Address
	FeeBps       uint16
	Nonce        uint64
}

func (*InitializeTransaction) GetTransactionType() TransactionType {
	return TransactionTypeInitialize
}

func (tx *InitializeTransaction) Actor() common.Address { return tx.Admin }

func (tx *InitializeTransaction) GetNonce() uint64 { return tx.Nonce }

type DepositTransaction struct {
	User   common.Address
	Admin  common.Address
	Amount uint64
	Nonce  uint64
}

func (*DepositTransaction) GetTransactionType() TransactionType {
	return TransactionTypeDeposit
}

func (tx *DepositTransaction) Actor() common.Address { return tx.User }

func (tx *DepositTransaction) GetNonce() uint64 { return tx.Nonce }

type RequestWithdrawalTransaction struct {
	User          common.Address
	Admin         common.Address
	ReceiptAmount uint64
	Nonce         uint64
}

func (*RequestWithdrawalTransaction) GetTransactionType() TransactionType {
	return TransactionTypeRequestWithdrawal
}

func (tx *RequestWithdrawalTransaction) Actor() common.Address { return tx.User }

func (tx *RequestWithdrawalTransaction) GetNonce() uint64 { return tx.Nonce }

type ClaimTransaction struct {
	User  common.Address
	Admin common.Address
	Nonce uint64
}

func (*ClaimTransaction) GetTransactionType() TransactionType {
	return TransactionTypeClaim
}

func (tx *ClaimTransaction) Actor() common.Address { return tx.User }

func (tx *ClaimTransaction) GetNonce() uint64 { return tx.Nonce }

type SetPausedTransaction struct {
	Admin  common.Address
	Paused bool
	Nonce  uint64
}

func (*SetPausedTransaction) GetTransactionType() TransactionType {
	return TransactionTypeSetPaused
}

func (tx *SetPausedTransaction) Actor() common.Address { return tx.Admin }

func (tx *SetPausedTransaction) GetNonce() uint64 { return tx.Nonce }

// SignedTransaction carries one signature per co-signer over the serialized
// transaction.
type SignedTransaction struct {
	Transaction Transaction
	Signatures  [][]byte
}

func createInitializeArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "admin", Type: r.addressTy},
		{Name: "acceptedMint", Type: r.addressTy},
		{Name: "feeBps", Type: r.uint16Ty},
		{Name: "nonce", Type: r.uint64Ty},
	})
}

func createDepositArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "user", Type: r.addressTy},
		{Name: "admin", Type: r.addressTy},
		{Name: "amount", Type: r.uint64Ty},
		{Name: "nonce", Type: r.uint64Ty},
	})
}

func createRequestWithdrawalArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "user", Type: r.addressTy},
		{Name: "admin", Type: r.addressTy},
		{Name: "receiptAmount", Type: r.uint64Ty},
		{Name: "nonce", Type: r.uint64Ty},
	})
}

func createClaimArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "user", Type: r.addressTy},
		{Name: "admin", Type: r.addressTy},
		{Name: "nonce", Type: r.uint64Ty},
	})
}

func createSetPausedArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "admin", Type: r.addressTy},
		{Name: "paused", Type: r.boolTy},
		{Name: "nonce", Type: r.uint64Ty},
	})
}

// SerializeTransaction encodes tx as its type byte followed by the abi words
// of its fields. The result is what signers sign.
func (s *Serializer) SerializeTransaction(tx Transaction) ([]byte, error) {
	var body []byte
	var err error
	switch t := tx.(type) {
	case *InitializeTransaction:
		body, err = s.initializeArguments.Pack(t.Admin, t.AcceptedMint, t.FeeBps, t.Nonce)
	case *DepositTransaction:
		body, err = s.depositArguments.Pack(t.User, t.Admin, t.Amount, t.Nonce)
	case *RequestWithdrawalTransaction:
		body, err = s.requestWithdrawalArguments.Pack(t.User, t.Admin, t.ReceiptAmount, t.Nonce)
	case *ClaimTransaction:
		body, err = s.claimArguments.Pack(t.User, t.Admin, t.Nonce)
	case *SetPausedTransaction:
		body, err = s.setPausedArguments.Pack(t.Admin, t.Paused, t.Nonce)
	default:
		return nil, fmt.Errorf("Serialize %T: %w", tx, ErrUnknownTransactionType)
	}
	if err != nil {
		return nil, fmt.Errorf("Serialize %s transaction: %w", tx.GetTransactionType(), err)
	}
	return append([]byte{byte(tx.GetTransactionType())}, body...), nil
}

func (s *Serializer) DeserializeTransaction(data []byte) (Transaction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("Deserialize transaction: %w", ErrInvalidLength)
	}
	txType := TransactionType(data[0])
	var tx Transaction
	var args abi.Arguments
	switch txType {
	case TransactionTypeInitialize:
		tx, args = &InitializeTransaction{}, s.initializeArguments
	case TransactionTypeDeposit:
		tx, args = &DepositTransaction{}, s.depositArguments
	case TransactionTypeRequestWithdrawal:
		tx, args = &RequestWithdrawalTransaction{}, s.requestWithdrawalArguments
	case TransactionTypeClaim:
		tx, args = &ClaimTransaction{}, s.claimArguments
	case TransactionTypeSetPaused:
		tx, args = &SetPausedTransaction{}, s.setPausedArguments
	default:
		return nil, fmt.Errorf("Deserialize transaction type %d: %w", data[0], ErrUnknownTransactionType)
	}
	if len(data)-1 != 32*len(args) {
		return nil, fmt.Errorf("Deserialize %s transaction: %w", txType, ErrInvalidLength)
	}
	values, err := args.Unpack(data[1:])
	if err != nil {
		return nil, fmt.Errorf("Deserialize %s transaction: %w", txType, err)
	}
	if err := args.Copy(tx, values); err != nil {
		return nil, fmt.Errorf("Deserialize %s transaction: %w", txType, err)
	}
	return tx, nil
}
