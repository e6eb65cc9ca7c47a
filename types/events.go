package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/minio/sha256-simd"
)

type EventKind uint8

const (
	EventInitialized EventKind = iota + 1
	EventDeposited
	EventWithdrawalRequested
	EventClaimed
	EventPauseChanged
)

func (k EventKind) String() string {
	switch k {
	case EventInitialized:
		return "initialized"
	case EventDeposited:
		return "deposited"
	case EventWithdrawalRequested:
		return "withdrawal_requested"
	case EventClaimed:
		return "claimed"
	case EventPauseChanged:
		return "pause_changed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

var eventDiscriminator = discriminator("Event")

// EventSize is the encoded size of an Event.
const EventSize = DiscriminatorLength + 32*9

// Event is one audit entry. Amount is the deposit, burn or user payout
// amount depending on Kind, Fee is only set for claims and Total is the
// vault's total_deposited after the operation.
type Event struct {
	Seq       uint64
	Kind      EventKind
	Vault     common.Address
	Actor     common.Address
	Amount    uint64
	Fee       uint64
	Total     uint64
	Timestamp int64
	Paused    bool
}

func createEventArguments(r *typeRegistry) abi.Arguments {
	return abi.Arguments([]abi.Argument{
		{Name: "seq", Type: r.uint64Ty},
		{Name: "kind", Type: r.uint8Ty},
		{Name: "vault", Type: r.addressTy},
		{Name: "actor", Type: r.addressTy},
		{Name: "amount", Type: r.uint64Ty},
		{Name: "fee", Type: r.uint64Ty},
		{Name: "total", Type: r.uint64Ty},
		{Name: "timestamp", Type: r.int64Ty},
		{Name: "paused", Type: r.boolTy},
	})
}

func (e *Event) Serialize(s *Serializer) ([]byte, error) {
	data, err := packRecord(
		eventDiscriminator,
		s.eventArguments,
		e.Seq,
		uint8(e.Kind),
		e.Vault,
		e.Actor,
		e.Amount,
		e.Fee,
		e.Total,
		e.Timestamp,
		e.Paused,
	)
	if err != nil {
		return nil, fmt.Errorf("Serialize Event %v: %w", e, err)
	}
	return data, nil
}

// ID is the sha256 digest of the encoded event.
func (e *Event) ID(s *Serializer) ([32]byte, error) {
	data, err := e.Serialize(s)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

func (s *Serializer) DeserializeEvent(data []byte) (*Event, error) {
	var wire struct {
		Seq       uint64
		Kind      uint8
		Vault     common.Address
		Actor     common.Address
		Amount    uint64
		Fee       uint64
		Total     uint64
		Timestamp int64
		Paused    bool
	}
	if err := unpackRecord(eventDiscriminator, s.eventArguments, data, &wire); err != nil {
		return nil, fmt.Errorf("Deserialize Event: %w", err)
	}
	return &Event{
		Seq:       wire.Seq,
		Kind:      EventKind(wire.Kind),
		Vault:     wire.Vault,
		Actor:     wire.Actor,
		Amount:    wire.Amount,
		Fee:       wire.Fee,
		Total:     wire.Total,
		Timestamp: wire.Timestamp,
		Paused:    wire.Paused,
	}, nil
}
