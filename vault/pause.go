package vault

import (
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

type SetPausedArgs struct {
	Admin  common.Address
	Paused bool
}

// SetPaused sets is_paused. Only the admin authority may call it.
func (p *Processor) SetPaused(call Call, args SetPausedArgs) (*types.VaultState, []*types.Event, error) {
	if err := p.authorities.Resolve(args.Admin).Authorize(call.Signers); err != nil {
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
		state.IsPaused = args.Paused
		if err := p.storeVault(b, vault, state); err != nil {
			return nil, err
		}
		return []*types.Event{{
			Kind:      types.EventPauseChanged,
			Vault:     vault,
			Actor:     args.Admin,
			Total:     state.TotalDeposited,
			Timestamp: p.clock.Now(),
			Paused:    args.Paused,
		}}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.Info().Str("vault", vault.Hex()).Bool("paused", args.Paused).Msg("pause changed")
	return state, events, nil
}
