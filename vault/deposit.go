package vault

import (
	"fmt"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

type DepositArgs struct {
	User   common.Address
	Admin  common.Address
	Amount uint64
	// Source is the user's holding of the accepted asset. Zero selects the
	// associated holding.
	Source common.Address
	// ReceiptTo is the user's receipt holding. Zero selects the associated
	// holding, created at the user's expense when missing.
	ReceiptTo common.Address
}

// Deposit moves Amount of the accepted asset into the vault and mints the same
// amount of receipt to the user.
func (p *Processor) Deposit(call Call, args DepositArgs) (*types.VaultState, []*types.Event, error) {
	if err := requireSigner(call.Signers, args.User); err != nil {
		return nil, nil, err
	}
	vault, _, err := p.VaultAddress(args.Admin)
	if err != nil {
		return nil, nil, err
	}

	var state *types.VaultState
	events, err := p.execute(vault, call, func(b *storage.Batch) ([]*types.Event, error) {
		var err error
		state, err = p.loadVault(b, vault)
		if err != nil {
			return nil, err
		}
		if state.IsPaused {
			return nil, ErrVaultPaused
		}

		source, err := p.holdingOrDefault(args.Source, args.User, state.AcceptedMint)
		if err != nil {
			return nil, err
		}
		if _, err := p.holding(b, source, args.User, state.AcceptedMint); err != nil {
			return nil, err
		}
		receiptTo := args.ReceiptTo
		if receiptTo == (common.Address{}) {
			receiptTo, err = p.ledger.CreateAssociatedAccount(b, args.User, state.ReceiptMint, args.User)
			if err != nil {
				return nil, fmt.Errorf("receipt holding: %w", err)
			}
		}
		if _, err := p.holding(b, receiptTo, args.User, state.ReceiptMint); err != nil {
			return nil, err
		}

		total := state.TotalDeposited + args.Amount
		if total < state.TotalDeposited {
			return nil, fmt.Errorf("%w: total %d + %d", ErrArithmeticOverflow, state.TotalDeposited, args.Amount)
		}

		heldBalance, err := p.heldBalance(vault, state)
		if err != nil {
			return nil, err
		}
		signer, err := p.vaultSigner(vault, state)
		if err != nil {
			return nil, err
		}
		if err := p.ledger.Transfer(b, source, heldBalance, args.Amount, token.Signers(call.Signers)); err != nil {
			return nil, err
		}
		if err := p.ledger.MintTo(b, state.ReceiptMint, receiptTo, args.Amount, signer); err != nil {
			return nil, err
		}

		state.TotalDeposited = total
		if err := p.storeVault(b, vault, state); err != nil {
			return nil, err
		}
		return []*types.Event{{
			Kind:      types.EventDeposited,
			Vault:     vault,
			Actor:     args.User,
			Amount:    args.Amount,
			Total:     total,
			Timestamp: p.clock.Now(),
		}}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.Info().
		Str("vault", vault.Hex()).
		Str("user", args.User.Hex()).
		Uint64("amount", args.Amount).
		Uint64("total", state.TotalDeposited).
		Msg("deposited")
	return state, events, nil
}
