// Package register defines the roster and attendance value types, the
// storage adapter contract, and the wire shapes shared by the domain store
// and the serialization adapters.
package register

// Student is one roster member. Roll is the natural key referenced by
// attendance entries; ID is an opaque token used only as a stable handle
// for presentation layers and is never a lookup key elsewhere.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Roll string `json:"roll"`
}

// Entry records one student's presence for one date. Name is a denormalized
// copy of the student's name taken at the last roster sync; UpdateStudent is
// the only mutation path allowed to refresh it.
type Entry struct {
	Roll    string `json:"roll"`
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Notes   string `json:"notes"`
}

// Patch is an explicit merge patch for one attendance entry. Nil fields are
// left untouched.
type Patch struct {
	Present *bool
	Notes   *string
}

// Summary aggregates one date bucket. An unmaterialized date summarizes to
// zeros, meaning nothing recorded yet rather than nothing exists.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
}

// Snapshot is the full state of the register: the roster plus every date
// bucket. It doubles as the JSON backup document and as the persisted wire
// shape, so it must round-trip losslessly.
type Snapshot struct {
	Students []Student          `json:"students"`
	Records  map[string][]Entry `json:"records"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Students: CloneStudents(s.Students),
		Records:  make(map[string][]Entry, len(s.Records)),
	}
	for date, entries := range s.Records {
		out.Records[date] = CloneEntries(entries)
	}
	return out
}

// CloneStudents copies a roster slice.
func CloneStudents(in []Student) []Student {
	if in == nil {
		return nil
	}
	return append([]Student(nil), in...)
}

// CloneEntries copies one date bucket.
func CloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	return append([]Entry(nil), in...)
}
