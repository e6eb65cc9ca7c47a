package vault

import (
	"errors"
	"fmt"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

type RequestWithdrawalArgs struct {
	User          common.Address
	Admin         common.Address
	ReceiptAmount uint64
	// ReceiptFrom is the user's receipt holding. Zero selects the associated
	// holding.
	ReceiptFrom common.Address
}

// RequestWithdrawal burns ReceiptAmount of the user's receipt and opens the
// user's withdrawal ticket. The entitlement is fixed here, there is no way to
// cancel a ticket other than claiming it.
func (p *Processor) RequestWithdrawal(call Call, args RequestWithdrawalArgs) (*types.WithdrawalTicket, []*types.Event, error) {
	if err := requireSigner(call.Signers, args.User); err != nil {
		return nil, nil, err
	}
	vault, _, err := p.VaultAddress(args.Admin)
	if err != nil {
		return nil, nil, err
	}
	ticketAddr, ticketBump, err := p.TicketAddress(args.User, vault)
	if err != nil {
		return nil, nil, err
	}

	var ticket *types.WithdrawalTicket
	events, err := p.execute(vault, call, func(b *storage.Batch) ([]*types.Event, error) {
		state, err := p.loadVault(b, vault)
		if err != nil {
			return nil, err
		}
		if state.IsPaused {
			return nil, ErrVaultPaused
		}

		receiptFrom, err := p.holdingOrDefault(args.ReceiptFrom, args.User, state.ReceiptMint)
		if err != nil {
			return nil, err
		}
		// a user who never deposited has no associated receipt holding, which
		// reads as a zero balance
		var balance uint64
		exists := true
		if args.ReceiptFrom == (common.Address{}) {
			if exists, err = b.Exists(receiptFrom); err != nil {
				return nil, err
			}
		}
		if exists {
			holding, err := p.holding(b, receiptFrom, args.User, state.ReceiptMint)
			if err != nil {
				return nil, err
			}
			balance = holding.Amount
		}
		if balance < args.ReceiptAmount {
			return nil, fmt.Errorf("%w: have %d, requested %d", ErrInsufficientBalance, balance, args.ReceiptAmount)
		}

		if exists {
			if err := p.ledger.Burn(b, state.ReceiptMint, receiptFrom, args.ReceiptAmount, token.Signers(call.Signers)); err != nil {
				return nil, err
			}
		}
		if err := b.Create(ticketAddr, p.program, args.User, types.WithdrawalTicketSize); err != nil {
			if errors.Is(err, storage.ErrAccountExists) {
				return nil, fmt.Errorf("%w: %w", ErrTicketExists, err)
			}
			return nil, err
		}

		now := p.clock.Now()
		ticket = &types.WithdrawalTicket{
			User:          args.User,
			ReceiptAmount: args.ReceiptAmount,
			RequestedAt:   now,
			Bump:          ticketBump,
		}
		data, err := ticket.Serialize(p.storage.Serializer())
		if err != nil {
			return nil, err
		}
		if err := b.Store(ticketAddr, p.program, data); err != nil {
			return nil, err
		}
		return []*types.Event{{
			Kind:      types.EventWithdrawalRequested,
			Vault:     vault,
			Actor:     args.User,
			Amount:    args.ReceiptAmount,
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
		Uint64("receiptAmount", ticket.ReceiptAmount).
		Int64("claimableAt", ticket.RequestedAt+CooldownSeconds).
		Msg("withdrawal requested")
	return ticket, events, nil
}
