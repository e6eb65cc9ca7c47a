package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// StateUpdate is the receipt of an applied transaction.
type StateUpdate struct {
	Transaction *SignedTransaction
	Signers     []common.Address
	Events      []*Event
}

// Solvency compares the recorded total against the held balance.
type Solvency struct {
	Vault          common.Address
	TotalDeposited uint64
	HeldBalance    uint64
}

func (s *Solvency) Holds() bool {
	return s.TotalDeposited == s.HeldBalance
}
