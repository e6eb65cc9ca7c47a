package vault

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

type ClaimArgs struct {
	User  common.Address
	Admin common.Address
	// UserHolding receives the payout. Zero selects the user's associated
	// holding of the accepted asset.
	UserHolding common.Address
	// AdminHolding receives the fee. Zero selects the admin's associated
	// holding of the accepted asset.
	AdminHolding common.Address
}

// Settlement is the outcome of a claim.
type Settlement struct {
	ReceiptAmount uint64
	Fee           uint64
	UserAmount    uint64
	Total         uint64
}

// SplitFee returns floor(amount*feeBps/10000) and the remainder.
func SplitFee(amount uint64, feeBps uint16) (fee uint64, rest uint64, err error) {
	hi, lo := bits.Mul64(amount, uint64(feeBps))
	if hi != 0 {
		return 0, 0, fmt.Errorf("%w: %d * %d", ErrArithmeticOverflow, amount, feeBps)
	}
	fee = lo / uint64(MaxFeeBps)
	if fee > amount {
		return 0, 0, fmt.Errorf("%w: fee %d exceeds %d", ErrArithmeticOverflow, fee, amount)
	}
	return fee, amount - fee, nil
}

// claimableAt is requested_at plus the cooldown, checked for overflow.
func claimableAt(ticket *types.WithdrawalTicket) (int64, error) {
	if ticket.RequestedAt > math.MaxInt64-CooldownSeconds {
		return 0, fmt.Errorf("%w: requested_at %d", ErrArithmeticOverflow, ticket.RequestedAt)
	}
	return ticket.RequestedAt + CooldownSeconds, nil
}

// Claim settles the user's ticket once the cooldown has passed: the payout
// goes to the user, the fee to the admin, and the ticket is closed with its
// rent returned to the user. Claim works while the vault is paused.
func (p *Processor) Claim(call Call, args ClaimArgs) (*Settlement, []*types.Event, error) {
	if err := requireSigner(call.Signers, args.User); err != nil {
		return nil, nil, err
	}
	vault, _, err := p.VaultAddress(args.Admin)
	if err != nil {
		return nil, nil, err
	}
	ticketAddr, _, err := p.TicketAddress(args.User, vault)
	if err != nil {
		return nil, nil, err
	}

	var settlement *Settlement
	events, err := p.execute(vault, call, func(b *storage.Batch) ([]*types.Event, error) {
		state, err := p.loadVault(b, vault)
		if err != nil {
			return nil, err
		}
		ticket, err := p.loadTicket(b, ticketAddr)
		if err != nil {
			return nil, err
		}
		if ticket.User != args.User {
			return nil, fmt.Errorf("%w: ticket belongs to %s", ErrUnauthorized, ticket.User.Hex())
		}

		now := p.clock.Now()
		readyAt, err := claimableAt(ticket)
		if err != nil {
			return nil, err
		}
		if now < readyAt {
			return nil, fmt.Errorf("%w: claimable at %d, now %d", ErrCooldownNotElapsed, readyAt, now)
		}

		fee, userAmount, err := SplitFee(ticket.ReceiptAmount, state.FeeBps)
		if err != nil {
			return nil, err
		}
		if state.TotalDeposited < ticket.ReceiptAmount {
			return nil, fmt.Errorf("%w: total %d - %d", ErrArithmeticOverflow, state.TotalDeposited, ticket.ReceiptAmount)
		}

		heldBalance, err := p.heldBalance(vault, state)
		if err != nil {
			return nil, err
		}
		signer, err := p.vaultSigner(vault, state)
		if err != nil {
			return nil, err
		}
		if userAmount > 0 {
			to, err := p.holdingOrDefault(args.UserHolding, args.User, state.AcceptedMint)
			if err != nil {
				return nil, err
			}
			if _, err := p.holding(b, to, args.User, state.AcceptedMint); err != nil {
				return nil, err
			}
			if err := p.ledger.Transfer(b, heldBalance, to, userAmount, signer); err != nil {
				return nil, err
			}
		}
		if fee > 0 {
			to := args.AdminHolding
			if to == (common.Address{}) {
				// created on demand, the claimant pays its rent
				to, err = p.ledger.CreateAssociatedAccount(b, state.Admin, state.AcceptedMint, args.User)
				if err != nil {
					return nil, fmt.Errorf("fee holding: %w", err)
				}
			}
			if _, err := p.holding(b, to, state.Admin, state.AcceptedMint); err != nil {
				return nil, err
			}
			if err := p.ledger.Transfer(b, heldBalance, to, fee, signer); err != nil {
				return nil, err
			}
		}

		state.TotalDeposited -= ticket.ReceiptAmount
		if err := p.storeVault(b, vault, state); err != nil {
			return nil, err
		}
		if err := b.Close(ticketAddr, p.program, args.User); err != nil {
			return nil, err
		}

		settlement = &Settlement{
			ReceiptAmount: ticket.ReceiptAmount,
			Fee:           fee,
			UserAmount:    userAmount,
			Total:         state.TotalDeposited,
		}
		return []*types.Event{{
			Kind:      types.EventClaimed,
			Vault:     vault,
			Actor:     args.User,
			Amount:    userAmount,
			Fee:       fee,
			Total:     state.TotalDeposited,
			Timestamp: now,
		}}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.Info().
		Str("vault", vault.Hex()).
		Str("user", args.User.Hex()).
		Uint64("receiptAmount", settlement.ReceiptAmount).
		Uint64("fee", settlement.Fee).
		Uint64("userAmount", settlement.UserAmount).
		Uint64("total", settlement.Total).
		Msg("claimed")
	return settlement, events, nil
}
