package vault

import (
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

func (p *Processor) Vault(admin common.Address) (*types.VaultState, error) {
	vault, _, err := p.VaultAddress(admin)
	if err != nil {
		return nil, err
	}
	b := p.storage.Begin()
	defer b.Discard()
	return p.loadVault(b, vault)
}

// Ticket returns the pending withdrawal of user in admin's vault, or
// ErrNoPendingWithdrawal.
func (p *Processor) Ticket(user common.Address, admin common.Address) (*types.WithdrawalTicket, error) {
	vault, _, err := p.VaultAddress(admin)
	if err != nil {
		return nil, err
	}
	ticketAddr, _, err := p.TicketAddress(user, vault)
	if err != nil {
		return nil, err
	}
	b := p.storage.Begin()
	defer b.Discard()
	return p.loadTicket(b, ticketAddr)
}

// ClaimableAt is the earliest time the user's pending ticket can be claimed.
func (p *Processor) ClaimableAt(user common.Address, admin common.Address) (int64, error) {
	ticket, err := p.Ticket(user, admin)
	if err != nil {
		return 0, err
	}
	return claimableAt(ticket)
}

// Solvency reads total_deposited and the held balance in one consistent view.
func (p *Processor) Solvency(admin common.Address) (*types.Solvency, error) {
	vault, _, err := p.VaultAddress(admin)
	if err != nil {
		return nil, err
	}
	p.locks.Lock(vault)
	defer p.locks.Unlock(vault)
	b := p.storage.Begin()
	defer b.Discard()

	state, err := p.loadVault(b, vault)
	if err != nil {
		return nil, err
	}
	heldBalance, err := p.heldBalance(vault, state)
	if err != nil {
		return nil, err
	}
	held, err := p.ledger.Account(b, heldBalance)
	if err != nil {
		return nil, err
	}
	return &types.Solvency{
		Vault:          vault,
		TotalDeposited: state.TotalDeposited,
		HeldBalance:    held.Amount,
	}, nil
}

// Events returns the audit log of admin's vault from sequence fromSeq on.
func (p *Processor) Events(admin common.Address, fromSeq uint64, limit int) ([]*types.Event, error) {
	vault, _, err := p.VaultAddress(admin)
	if err != nil {
		return nil, err
	}
	return p.storage.Events(vault, fromSeq, limit)
}

// PruneEvents drops audit events of admin's vault older than beforeSeq.
func (p *Processor) PruneEvents(admin common.Address, beforeSeq uint64) (int, error) {
	vault, _, err := p.VaultAddress(admin)
	if err != nil {
		return 0, err
	}
	p.locks.Lock(vault)
	defer p.locks.Unlock(vault)
	return p.storage.PruneEvents(vault, beforeSeq)
}
