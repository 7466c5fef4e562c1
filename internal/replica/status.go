package replica

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome a replica reports for a single handled request.
// Statuses are reply values, not process faults: a replica never fails a
// request, it answers it.
type Status uint8

const (
	StatusOK Status = iota
	StatusAlreadyLocked
	StatusNotExpectedValue
	StatusLockExpired
	StatusNotOwner
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAlreadyLocked:
		return "already_locked"
	case StatusNotExpectedValue:
		return "not_expected_value"
	case StatusLockExpired:
		return "lock_expired"
	case StatusNotOwner:
		return "not_owner"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes a Status as its string form so wire payloads stay
// readable in logs and debugging sessions.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch name {
	case "ok":
		*s = StatusOK
	case "already_locked":
		*s = StatusAlreadyLocked
	case "not_expected_value":
		*s = StatusNotExpectedValue
	case "lock_expired":
		*s = StatusLockExpired
	case "not_owner":
		*s = StatusNotOwner
	case "not_found":
		*s = StatusNotFound
	default:
		return fmt.Errorf("unknown status: %s", name)
	}

	return nil
}
