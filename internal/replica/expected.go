package replica

import "bytes"

// Expected is a phase-1 precondition on a key's stored value. The zero
// value is the distinguished "no entry" sentinel: it requires the key to
// be absent. The sentinel itself is never stored.
type Expected struct {
	Present bool
	Value   []byte
}

// ExpectAbsent returns the precondition that the key has no entry, making
// the acquisition a create-if-absent reservation.
func ExpectAbsent() Expected {
	return Expected{}
}

// ExpectValue returns the precondition that the stored value equals v,
// proving ownership of the entry.
func ExpectValue(v []byte) Expected {
	return Expected{Present: true, Value: v}
}

func (e Expected) matches(entry storeEntry, found bool) bool {
	if !found {
		return !e.Present
	}
	if !e.Present {
		return false
	}
	return bytes.Equal(e.Value, entry.value)
}
