package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	accountHeaderDiscriminator    = discriminator("AccountHeader")
	vaultStateDiscriminator       = discriminator("VaultState")
	withdrawalTicketDiscriminator = discriminator("WithdrawalTicket")
	mintDiscriminator             = discriminator("Mint")
	tokenAccountDiscriminator     = discriminator("TokenAccount")
)

// Encoded sizes, discriminator included.
const (
	AccountHeaderSize    = DiscriminatorLength + 32*4
	VaultStateSize       = DiscriminatorLength + 32*8
	WithdrawalTicketSize = DiscriminatorLength + 32*4
	MintSize             = DiscriminatorLength + 32*4
	TokenAccountSize     = DiscriminatorLength + 32*3
)

// AccountHeader precedes the data of every stored account.
type AccountHeader struct {
	Owner common.Address
	Payer common.Address
	Rent  uint64
	Size  uint64
}

func createAccountHeaderArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "owner", Type: r.addressTy},
		{Name: "payer", Type: r.addressTy},
		{Name: "rent", Type: r.uint64Ty},
		{Name: "size", Type: r.uint64Ty},
	})
}

func (h *AccountHeader) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(accountHeaderDiscriminator, s.accountHeaderArguments, h.Owner, h.Payer, h.Rent, h.Size)
	if err != nil {
		return nil, fmt.Errorf("Serialize AccountHeader %v: %w", h, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeAccountHeader(data []byte) (*AccountHeader, error) {
	var h AccountHeader
	if err := unpackRecord(accountHeaderDiscriminator, s.accountHeaderArguments, data, &h); err != nil {
		return nil, fmt.Errorf("Deserialize AccountHeader: %w", err)
	}
	return &h, nil
}

// VaultState is the per-vault configuration and accounting record.
type VaultState struct {
	Admin          common.Address
	AcceptedMint   common.Address
	ReceiptMint    common.Address
	TotalDeposited uint64
	FeeBps         uint16
	IsPaused       bool
	Bump           uint8
	VaultTokenBump uint8
}

func createVaultStateArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "admin", Type: r.addressTy},
		{Name: "acceptedMint", Type: r.addressTy},
		{Name: "receiptMint", Type: r.addressTy},
		{Name: "totalDeposited", Type: r.uint64Ty},
		{Name: "feeBps", Type: r.uint16Ty},
		{Name: "isPaused", Type: r.boolTy},
		{Name: "bump", Type: r.uint8Ty},
		{Name: "vaultTokenBump", Type: r.uint8Ty},
	})
}

func (v *VaultState) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(
		vaultStateDiscriminator,
		s.vaultStateArguments,
		v.Admin,
		v.AcceptedMint,
		v.ReceiptMint,
		v.TotalDeposited,
		v.FeeBps,
		v.IsPaused,
		v.Bump,
		v.VaultTokenBump,
	)
	if err != nil {
		return nil, fmt.Errorf("Serialize VaultState %v: %w", v, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeVaultState(data []byte) (*VaultState, error) {
	var v VaultState
	if err := unpackRecord(vaultStateDiscriminator, s.vaultStateArguments, data, &v); err != nil {
		return nil, fmt.Errorf("Deserialize VaultState: %w", err)
	}
	return &v, nil
}

// WithdrawalTicket is a pending withdrawal. At most one exists per user and
// vault.
type WithdrawalTicket struct {
	User          common.Address
	ReceiptAmount uint64
	RequestedAt   int64
	Bump          uint8
}

func createWithdrawalTicketArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "user", Type: r.addressTy},
		{Name: "receiptAmount", Type: r.uint64Ty},
		{Name: "requestedAt", Type: r.int64Ty},
		{Name: "bump", Type: r.uint8Ty},
	})
}

func (t *WithdrawalTicket) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(withdrawalTicketDiscriminator, s.withdrawalTicketArguments, t.User, t.ReceiptAmount, t.RequestedAt, t.Bump)
	if err != nil {
		return nil, fmt.Errorf("Serialize WithdrawalTicket %v: %w", t, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeWithdrawalTicket(data []byte) (*WithdrawalTicket, error) {
	var t WithdrawalTicket
	if err := unpackRecord(withdrawalTicketDiscriminator, s.withdrawalTicketArguments, data, &t); err != nil {
		return nil, fmt.Errorf("Deserialize WithdrawalTicket: %w", err)
	}
	return &t, nil
}

// Mint describes a fungible asset.
type Mint struct {
	MintAuthority common.Address
	Supply        uint64
	Decimals      uint8
	IsInitialized bool
}

func createMintArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "mintAuthority", Type: r.addressTy},
		{Name: "supply", Type: r.uint64Ty},
		{Name: "decimals", Type: r.uint8Ty},
		{Name: "isInitialized", Type: r.boolTy},
	})
}

func (m *Mint) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(mintDiscriminator, s.mintArguments, m.MintAuthority, m.Supply, m.Decimals, m.IsInitialized)
	if err != nil {
		return nil, fmt.Errorf("Serialize Mint %v: %w", m, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeMint(data []byte) (*Mint, error) {
	var m Mint
	if err := unpackRecord(mintDiscriminator, s.mintArguments, data, &m); err != nil {
		return nil, fmt.Errorf("Deserialize Mint: %w", err)
	}
	return &m, nil
}

// TokenAccount is a balance of one mint held by one owner.
type TokenAccount struct {
	Mint   common.Address
	Owner  common.Address
	Amount uint64
}

func createTokenAccountArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "mint", Type: r.addressTy},
		{Name: "owner", Type: r.addressTy},
		{Name: "amount", Type: r.uint64Ty},
	})
}

func (a *TokenAccount) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(tokenAccountDiscriminator, s.tokenAccountArguments, a.Mint, a.Owner, a.Amount)
	if err != nil {
		return nil, fmt.Errorf("Serialize TokenAccount %v: %w", a, err)
	}
	return data, nil
}

func (s *Serializer) DeserializeTokenAccount(data []byte) (*TokenAccount, error) {
	var a TokenAccount
	if err := unpackRecord(tokenAccountDiscriminator, s.tokenAccountArguments, data, &a); err != nil {
		return nil, fmt.Errorf("Deserialize TokenAccount: %w", err)
	}
	return &a, nil
}
