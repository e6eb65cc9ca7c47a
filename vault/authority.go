package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Authority decides whether the signers of a call may act as a vault admin.
type Authority interface {
	Authorize(signers []common.Address) error
}

// SingleKey is satisfied when its key co-signed the call.
type SingleKey common.Address

func (k SingleKey) Authorize(signers []common.Address) error {
	for _, s := range signers {
		if s == common.Address(k) {
			return nil
		}
	}
	return fmt.Errorf("%w: admin %s did not sign", ErrUnauthorized, common.Address(k).Hex())
}

// AuthorityResolver maps an admin identity to the authority that speaks for it.
type AuthorityResolver interface {
	Resolve(admin common.Address) Authority
}

type singleKeyResolver struct{}

func (singleKeyResolver) Resolve(admin common.Address) Authority {
	return SingleKey(admin)
}

// SingleKeyAuthorities treats every admin identity as its own key.
var SingleKeyAuthorities AuthorityResolver = singleKeyResolver{}

func requireSigner(signers []common.Address, addr common.Address) error {
	for _, s := range signers {
		if s == addr {
			return nil
		}
	}
	return fmt.Errorf("%w: %s did not sign", ErrUnauthorized, addr.Hex())
}
