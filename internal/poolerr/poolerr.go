// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package poolerr defines the core error taxonomy. Every error the core
// returns across its external interfaces is one of the kinds here, built
// with the constructors so callers can recover the payload via errors.As.
package poolerr

import "fmt"

// Kind identifies one of the distinct error categories the core emits.
type Kind int

const (
	KindEquipmentNotFound Kind = iota
	KindInvalidEquipmentData
	KindInvalidOperation
	KindInterlockViolation
	KindPortUnavailable
	KindPortClosed
	KindWriteRejected
	KindProtocolError
	KindNoResponse
	KindCancelled
	KindPersistenceError
	KindConfigurationCorrupt
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindEquipmentNotFound:
		return "EquipmentNotFound"
	case KindInvalidEquipmentData:
		return "InvalidEquipmentData"
	case KindInvalidOperation:
		return "InvalidOperation"
	case KindInterlockViolation:
		return "InterlockViolation"
	case KindPortUnavailable:
		return "PortUnavailable"
	case KindPortClosed:
		return "PortClosed"
	case KindWriteRejected:
		return "WriteRejected"
	case KindProtocolError:
		return "ProtocolError"
	case KindNoResponse:
		return "NoResponse"
	case KindCancelled:
		return "Cancelled"
	case KindPersistenceError:
		return "PersistenceError"
	case KindConfigurationCorrupt:
		return "ConfigurationCorrupt"
	default:
		return "Internal"
	}
}

// Error is the concrete type every core error unwraps to.
type Error struct {
	Kind    Kind
	Fields  map[string]any
	Cause   error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, &poolerr.Error{Kind: poolerr.KindNoResponse})
// style checks: it compares Kind whenever the target is also an *Error,
// whatever the target's Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, fields map[string]any, cause error, msg string) *Error {
	return &Error{Kind: kind, Fields: fields, Cause: cause, Message: msg}
}

func EquipmentNotFound(kind string, id int) *Error {
	return newErr(KindEquipmentNotFound, map[string]any{"kind": kind, "id": id}, nil,
		fmt.Sprintf("%s %d not found", kind, id))
}

func InvalidEquipmentData(kind string, id int, field, reason string) *Error {
	return newErr(KindInvalidEquipmentData, map[string]any{"kind": kind, "id": id, "field": field, "reason": reason}, nil,
		fmt.Sprintf("%s %d field %q: %s", kind, id, field, reason))
}

func InvalidOperation(controllerType, intent string) *Error {
	return newErr(KindInvalidOperation, map[string]any{"controllerType": controllerType, "intent": intent}, nil,
		fmt.Sprintf("%s does not support %s", controllerType, intent))
}

func InterlockViolation(conflictingKey string) *Error {
	return newErr(KindInterlockViolation, map[string]any{"conflictingKey": conflictingKey}, nil,
		fmt.Sprintf("blocked by interlock %q", conflictingKey))
}

func PortUnavailable(portID int, cause error) *Error {
	return newErr(KindPortUnavailable, map[string]any{"portId": portID}, cause, "")
}

func PortClosed(portID int) *Error {
	return newErr(KindPortClosed, map[string]any{"portId": portID}, nil, "")
}

func WriteRejected(portID int) *Error {
	return newErr(KindWriteRejected, map[string]any{"portId": portID}, nil, "write exceeds backpressure bound")
}

func ProtocolError(portID int, detail string) *Error {
	return newErr(KindProtocolError, map[string]any{"portId": portID, "detail": detail}, nil, detail)
}

func NoResponse(portID int, descriptor string) *Error {
	return newErr(KindNoResponse, map[string]any{"portId": portID, "msgDescriptor": descriptor}, nil,
		fmt.Sprintf("no response to %s", descriptor))
}

func Cancelled() *Error {
	return newErr(KindCancelled, nil, nil, "cancelled")
}

func PersistenceError(path string, cause error) *Error {
	return newErr(KindPersistenceError, map[string]any{"path": path}, cause, "")
}

func ConfigurationCorrupt(path string) *Error {
	return newErr(KindConfigurationCorrupt, map[string]any{"path": path}, nil, "")
}

func Internal(cause error) *Error {
	return newErr(KindInternal, nil, cause, "")
}
