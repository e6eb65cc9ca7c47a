package vault

import (
	"errors"
	"fmt"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

type InitializeArgs struct {
	Admin        common.Address
	AcceptedMint common.Address
	FeeBps       uint16
}

// Initialize creates the vault of args.Admin: its state record, a receipt
// asset minted only by the vault, and the held-balance account. The admin
// pays the rent of all three.
func (p *Processor) Initialize(call Call, args InitializeArgs) (*types.VaultState, []*types.Event, error) {
	if err := p.authorities.Resolve(args.Admin).Authorize(call.Signers); err != nil {
		return nil, nil, err
	}
	if args.FeeBps > MaxFeeBps {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidFee, args.FeeBps)
	}
	vault, bump, err := p.VaultAddress(args.Admin)
	if err != nil {
		return nil, nil, err
	}
	heldBalance, heldBalanceBump, err := p.HeldBalanceAddress(vault)
	if err != nil {
		return nil, nil, err
	}
	receiptMint, _, err := p.ReceiptMintAddress(vault)
	if err != nil {
		return nil, nil, err
	}

	var state *types.VaultState
	events, err := p.execute(vault, call, func(b *storage.Batch) ([]*types.Event, error) {
		accepted, err := p.ledger.Mint(b, args.AcceptedMint)
		if err != nil {
			return nil, fmt.Errorf("accepted asset %s: %w", args.AcceptedMint.Hex(), err)
		}
		if err := b.Create(vault, p.program, args.Admin, types.VaultStateSize); err != nil {
			if errors.Is(err, storage.ErrAccountExists) {
				return nil, fmt.Errorf("%w: %w", ErrAlreadyInitialized, err)
			}
			return nil, err
		}
		if err := p.ledger.CreateMint(b, receiptMint, vault, args.Admin, accepted.Decimals); err != nil {
			return nil, fmt.Errorf("receipt asset: %w", err)
		}
		if err := p.ledger.CreateAccount(b, heldBalance, args.AcceptedMint, vault, args.Admin); err != nil {
			return nil, fmt.Errorf("held balance: %w", err)
		}
		if _, err := p.ledger.CreateAssociatedAccount(b, args.Admin, args.AcceptedMint, args.Admin); err != nil {
			return nil, fmt.Errorf("fee holding: %w", err)
		}

		state = &types.VaultState{
			Admin:          args.Admin,
			AcceptedMint:   args.AcceptedMint,
			ReceiptMint:    receiptMint,
			TotalDeposited: 0,
			FeeBps:         args.FeeBps,
			IsPaused:       false,
			Bump:           bump,
			VaultTokenBump: heldBalanceBump,
		}
		if err := p.storeVault(b, vault, state); err != nil {
			return nil, err
		}
		return []*types.Event{{
			Kind:      types.EventInitialized,
			Vault:     vault,
			Actor:     args.Admin,
			Timestamp: p.clock.Now(),
		}}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.Info().
		Str("vault", vault.Hex()).
		Str("admin", args.Admin.Hex()).
		Str("acceptedMint", args.AcceptedMint.Hex()).
		Str("receiptMint", receiptMint.Hex()).
		Uint16("feeBps", args.FeeBps).
		Msg("vault initialized")
	return state, events, nil
}
