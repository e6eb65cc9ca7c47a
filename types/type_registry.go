package types

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

type typeRegistry struct {
	addressTy abi.Type
	boolTy    abi.Type
	uint8Ty   abi.Type
	uint16Ty  abi.Type
	uint64Ty  abi.Type
	int64Ty   abi.Type
}

func newTypeRegistry() (*typeRegistry, error) {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	boolTy, err := abi.NewType("bool", "", nil)
	if err != nil {
		return nil, err
	}
	uint8Ty, err := abi.NewType("uint8", "", nil)
	if err != nil {
		return nil, err
	}
	uint16Ty, err := abi.NewType("uint16", "", nil)
	if err != nil {
		return nil, err
	}
	uint64Ty, err := abi.NewType("uint64", "", nil)
	if err != nil {
		return nil, err
	}
	int64Ty, err := abi.NewType("int64", "", nil)
	if err != nil {
		return nil, err
	}
	return &typeRegistry{
		addressTy: addressTy,
		boolTy:    boolTy,
		uint8Ty:   uint8Ty,
		uint16Ty:  uint16Ty,
		uint64Ty:  uint64Ty,
		int64Ty:   int64Ty,
	}, nil
}
