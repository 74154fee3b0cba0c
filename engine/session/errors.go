package session

import (
	"github.com/pkg/errors"
	"github.com/scenecast/scenecast/engine/wire"
)

// Failure sentinels. Every fatal condition funnels into Session.fail, which
// classifies the cause for diagnostics; no command is individually retried,
// the unit of failure is the whole session.
var (
	// ErrIDOutOfRange means an entity id >= the table's current length
	ErrIDOutOfRange = errors.New("invalid id (out of range)")
	// ErrEmptySlot means an entity id in range whose slot is unoccupied
	ErrEmptySlot = errors.New("invalid id (empty slot)")
	// ErrSlotOccupied means an add targeted a slot without a prior removal
	ErrSlotOccupied = errors.New("slot already occupied")
	// ErrIDTooLarge means an add exceeded the table's declared id ceiling
	ErrIDTooLarge = errors.New("id exceeds table limit")

	// ErrCorruptStream means a structurally invalid command payload
	ErrCorruptStream = errors.New("corrupt stream")
	// ErrUnknownCommand means an opcode missing from the dispatch table
	ErrUnknownCommand = errors.New("unrecognized stream command")
	// ErrUnknownMessage means a session message of unrecognized type
	ErrUnknownMessage = errors.New("unrecognized session message")

	// ErrBadFileID means a recording whose magic identifier is wrong
	ErrBadFileID = errors.New("incorrect replay file id")
	// ErrVersionMismatch means a recording outside the accepted version range
	ErrVersionMismatch = errors.New("unsupported replay protocol version")
)

// FailureCategory is the coarse classification reported to the user-facing layer
type FailureCategory string

const (
	FailureDecode    FailureCategory = "decode"
	FailureProtocol  FailureCategory = "protocol"
	FailureReference FailureCategory = "reference"
	FailureInternal  FailureCategory = "internal"
)

// Classify maps an error to its failure category
func Classify(err error) FailureCategory {
	switch errors.Cause(err) {
	case wire.ErrOutOfData, wire.ErrInvalidLength, ErrCorruptStream:
		return FailureDecode
	case ErrUnknownCommand, ErrUnknownMessage, ErrSlotOccupied, ErrIDTooLarge,
		ErrBadFileID, ErrVersionMismatch:
		return FailureProtocol
	case ErrIDOutOfRange, ErrEmptySlot:
		return FailureReference
	default:
		return FailureInternal
	}
}
