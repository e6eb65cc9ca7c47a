package statemachine

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/celer-network/go-vault/log"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/celer-network/go-vault/utils"
	"github.com/celer-network/go-vault/vault"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidNonce = errors.New("invalid nonce")
	ErrNoSignature  = errors.New("transaction carries no signature")
)

// StateMachine verifies signed transactions and applies them to the vault
// processor.
type StateMachine struct {
	processor  *vault.Processor
	serializer *types.Serializer
	log        *log.Logger
}

func NewStateMachine(processor *vault.Processor, serializer *types.Serializer) *StateMachine {
	return &StateMachine{
		processor:  processor,
		serializer: serializer,
		log:        log.NewLogger("statemachine"),
	}
}

// SignTransaction signs tx with every key.
func SignTransaction(serializer *types.Serializer, tx types.Transaction, keys ...*ecdsa.PrivateKey) (*types.SignedTransaction, error) {
	data, err := serializer.SerializeTransaction(tx)
	if err != nil {
		return nil, err
	}
	signed := &types.SignedTransaction{Transaction: tx}
	for _, key := range keys {
		sig, err := utils.SignData(key, data)
		if err != nil {
			return nil, err
		}
		signed.Signatures = append(signed.Signatures, sig)
	}
	return signed, nil
}

// Signers recovers the distinct signers of signedTx in signature order.
func (sm *StateMachine) Signers(signedTx *types.SignedTransaction) ([]common.Address, error) {
	if len(signedTx.Signatures) == 0 {
		return nil, ErrNoSignature
	}
	data, err := sm.serializer.SerializeTransaction(signedTx.Transaction)
	if err != nil {
		return nil, err
	}
	signers := make([]common.Address, 0, len(signedTx.Signatures))
	seen := make(map[common.Address]struct{}, len(signedTx.Signatures))
	for i, sig := range signedTx.Signatures {
		signer, err := utils.RecoverSigner(data, sig)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		if _, ok := seen[signer]; ok {
			continue
		}
		seen[signer] = struct{}{}
		signers = append(signers, signer)
	}
	return signers, nil
}

// NextNonce is the nonce the next transaction of actor must carry.
func (sm *StateMachine) NextNonce(actor common.Address) (uint64, error) {
	b := sm.processor.Storage().Begin()
	defer b.Discard()
	nonce, err := b.Nonce(actor)
	if err != nil {
		return 0, err
	}
	return nonce + 1, nil
}

func (sm *StateMachine) ApplyTransaction(signedTx *types.SignedTransaction) (*types.StateUpdate, error) {
	tx := signedTx.Transaction
	signers, err := sm.Signers(signedTx)
	if err != nil {
		return nil, err
	}
	call := vault.Call{
		Signers: signers,
		Guard:   nonceGuard(tx.Actor(), tx.GetNonce()),
	}

	var events []*types.Event
	switch t := tx.(type) {
	case *types.InitializeTransaction:
		_, events, err = sm.processor.Initialize(call, vault.InitializeArgs{
			Admin:        t.Admin,
			AcceptedMint: t.AcceptedMint,
			FeeBps:       t.FeeBps,
		})
	case *types.DepositTransaction:
		_, events, err = sm.processor.Deposit(call, vault.DepositArgs{
			User:   t.User,
			Admin:  t.Admin,
			Amount: t.Amount,
		})
	case *types.RequestWithdrawalTransaction:
		_, events, err = sm.processor.RequestWithdrawal(call, vault.RequestWithdrawalArgs{
			User:          t.User,
			Admin:         t.Admin,
			ReceiptAmount: t.ReceiptAmount,
		})
	case *types.ClaimTransaction:
		_, events, err = sm.processor.Claim(call, vault.ClaimArgs{
			User:  t.User,
			Admin: t.Admin,
		})
	case *types.SetPausedTransaction:
		_, events, err = sm.processor.SetPaused(call, vault.SetPausedArgs{
			Admin:  t.Admin,
			Paused: t.Paused,
		})
	default:
		err = fmt.Errorf("%T: %w", tx, types.ErrUnknownTransactionType)
	}
	if err != nil {
		sm.log.Debug().Err(err).Str("type", tx.GetTransactionType().String()).Str("actor", tx.Actor().Hex()).Uint64("nonce", tx.GetNonce()).Msg("transaction rejected")
		return nil, err
	}

	return &types.StateUpdate{
		Transaction: signedTx,
		Signers:     signers,
		Events:      events,
	}, nil
}

// nonceGuard consumes nonce for actor inside the operation's batch, so a
// rejected operation does not burn it.
func nonceGuard(actor common.Address, nonce uint64) func(b *storage.Batch) error {
	return func(b *storage.Batch) error {
		stored, err := b.Nonce(actor)
		if err != nil {
			return err
		}
		if nonce != stored+1 {
			return fmt.Errorf("%w: %s expected %d, got %d", ErrInvalidNonce, actor.Hex(), stored+1, nonce)
		}
		b.SetNonce(actor, nonce)
		return nil
	}
}
