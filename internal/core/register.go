// Package core implements the domain store: the in-memory roster and
// attendance tables, their reconciliation invariants, and write-through
// persistence to a storage adapter.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"rollbook/pkg/register"
)

// Register owns the roster and the attendance-by-date map. Every mutating
// operation applies in memory first and then mirrors both tables to the
// storage adapter. A failed persist leaves the in-memory state standing; the
// store keeps operating memory-only until the next successful write.
type Register struct {
	mu       sync.RWMutex
	storage  register.StorageAdapter
	students []register.Student
	records  map[string][]register.Entry
	metrics  *Metrics
	newID    func() string
}

// Option configures a Register at construction time.
type Option func(*Register)

// WithMetrics attaches Prometheus instrumentation to the store.
func WithMetrics(m *Metrics) Option {
	return func(r *Register) { r.metrics = m }
}

// WithIDGenerator overrides student ID generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Register) { r.newID = fn }
}

// NewRegister constructs an empty register backed by the given adapter.
func NewRegister(storage register.StorageAdapter, opts ...Option) *Register {
	r := &Register{
		storage: storage,
		records: make(map[string][]register.Entry),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadReport describes what Load found. A recovered table means the persisted
// blob was unreadable or unparsable and the table was reset to empty; this is
// deliberate availability-over-corruption behavior, surfaced so the
// presentation layer can show a startup notice.
type LoadReport struct {
	RosterRecovered   bool
	RosterCause       error
	RegisterRecovered bool
	RegisterCause     error
}

// Recovered reports whether either table was reset during load.
func (lr LoadReport) Recovered() bool {
	return lr.RosterRecovered || lr.RegisterRecovered
}

// Load hydrates both tables from storage. It never fails: an absent blob is
// the normal first-run state, and a corrupt blob resets its table to empty.
func (r *Register) Load(ctx context.Context) LoadReport {
	var report LoadReport

	r.mu.Lock()
	defer r.mu.Unlock()

	r.students = nil
	r.records = make(map[string][]register.Entry)

	if payload, ok, err := r.storage.Get(ctx, register.KeyStudents); err != nil {
		report.RosterRecovered = true
		report.RosterCause = err
	} else if ok {
		var students []register.Student
		if err := json.Unmarshal(payload, &students); err != nil {
			report.RosterRecovered = true
			report.RosterCause = err
		} else {
			r.students = students
		}
	}

	if payload, ok, err := r.storage.Get(ctx, register.KeyRecords); err != nil {
		report.RegisterRecovered = true
		report.RegisterCause = err
	} else if ok {
		var records map[string][]register.Entry
		if err := json.Unmarshal(payload, &records); err != nil {
			report.RegisterRecovered = true
			report.RegisterCause = err
		} else if records != nil {
			r.records = records
		}
	}

	if report.RosterRecovered {
		r.metrics.loadRecovery(register.KeyStudents)
	}
	if report.RegisterRecovered {
		r.metrics.loadRecovery(register.KeyRecords)
	}
	r.metrics.observeSizes(len(r.students), len(r.records))
	return report
}

// Persist mirrors both tables to storage. Callers hold no lock.
func (r *Register) Persist(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persistLocked(ctx)
}

func (r *Register) persistLocked(ctx context.Context) error {
	students, err := json.Marshal(r.students)
	if err != nil {
		r.metrics.persistFailure()
		return fmt.Errorf("encode roster: %w", err)
	}
	records, err := json.Marshal(r.records)
	if err != nil {
		r.metrics.persistFailure()
		return fmt.Errorf("encode records: %w", err)
	}
	if err := r.storage.Set(ctx, register.KeyStudents, students); err != nil {
		r.metrics.persistFailure()
		return fmt.Errorf("write roster: %w", err)
	}
	if err := r.storage.Set(ctx, register.KeyRecords, records); err != nil {
		r.metrics.persistFailure()
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// AddStudent appends a new roster member with a fresh ID. Existing date
// buckets are untouched; the student appears in them on the next
// materialization of each date.
func (r *Register) AddStudent(ctx context.Context, name, roll string) (register.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findRoll(roll) >= 0 {
		return register.Student{}, register.ErrDuplicateRoll{Roll: roll}
	}
	student := register.Student{ID: r.newID(), Name: name, Roll: roll}
	r.students = append(r.students, student)
	r.metrics.mutation("add_student")
	r.metrics.observeSizes(len(r.students), len(r.records))
	return student, r.persistLocked(ctx)
}

// UpdateStudent renames a student and/or changes their roll, then cascades
// the change into every date bucket so no entry keeps the old roll or a stale
// name copy. Validation happens before any state is touched, so a duplicate
// target roll leaves both tables unchanged.
func (r *Register) UpdateStudent(ctx context.Context, oldRoll, newName, newRoll string) (register.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findRoll(oldRoll)
	if idx < 0 {
		return register.Student{}, register.ErrStudentNotFound{Roll: oldRoll}
	}
	if newRoll != oldRoll && r.findRoll(newRoll) >= 0 {
		return register.Student{}, register.ErrDuplicateRoll{Roll: newRoll}
	}

	r.students[idx].Name = newName
	r.students[idx].Roll = newRoll
	for date, entries := range r.records {
		for i := range entries {
			if entries[i].Roll == oldRoll {
				entries[i].Roll = newRoll
				entries[i].Name = newName
			}
		}
		r.records[date] = entries
	}
	r.metrics.mutation("update_student")
	return r.students[idx], r.persistLocked(ctx)
}

// DeleteStudent removes a roster member and every attendance entry carrying
// their roll, in all date buckets. Unknown rolls are a no-op.
func (r *Register) DeleteStudent(ctx context.Context, roll string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findRoll(roll)
	if idx < 0 {
		return nil
	}
	r.students = append(r.students[:idx], r.students[idx+1:]...)
	for date, entries := range r.records {
		kept := entries[:0]
		for _, e := range entries {
			if e.Roll != roll {
				kept = append(kept, e)
			}
		}
		r.records[date] = kept
	}
	r.metrics.mutation("delete_student")
	r.metrics.observeSizes(len(r.students), len(r.records))
	return r.persistLocked(ctx)
}

// MaterializeDate ensures the bucket for dateKey has one entry per current
// student, appending absent-by-default entries in roster order and leaving
// existing marks untouched. Safe to call repeatedly.
func (r *Register) MaterializeDate(ctx context.Context, dateKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.materializeLocked(dateKey) {
		return nil
	}
	r.metrics.mutation("materialize_date")
	r.metrics.observeSizes(len(r.students), len(r.records))
	return r.persistLocked(ctx)
}

// materializeLocked reports whether the bucket changed.
func (r *Register) materializeLocked(dateKey string) bool {
	entries := r.records[dateKey]
	known := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		known[e.Roll] = struct{}{}
	}
	changed := false
	for _, s := range r.students {
		if _, ok := known[s.Roll]; ok {
			continue
		}
		entries = append(entries, register.Entry{Roll: s.Roll, Name: s.Name})
		changed = true
	}
	if changed || r.records[dateKey] == nil {
		r.records[dateKey] = entries
		if entries == nil {
			r.records[dateKey] = []register.Entry{}
		}
	}
	return changed
}

// SetAttendance materializes the date, then merges the patch into the entry
// for roll. Only the fields the patch carries are touched. A roll still
// missing after materialization is not in the roster and is reported rather
// than swallowed, since silence there would mask a reconciliation bug.
func (r *Register) SetAttendance(ctx context.Context, dateKey, roll string, patch register.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.materializeLocked(dateKey)
	entries := r.records[dateKey]
	for i := range entries {
		if entries[i].Roll != roll {
			continue
		}
		if patch.Present != nil {
			entries[i].Present = *patch.Present
		}
		if patch.Notes != nil {
			entries[i].Notes = *patch.Notes
		}
		r.records[dateKey] = entries
		r.metrics.mutation("set_attendance")
		return r.persistLocked(ctx)
	}
	return register.ErrRollNotFound{Roll: roll, Date: dateKey}
}

// MarkAll materializes the date and sets Present on every entry in the
// bucket, leaving notes untouched.
func (r *Register) MarkAll(ctx context.Context, dateKey string, present bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.materializeLocked(dateKey)
	entries := r.records[dateKey]
	for i := range entries {
		entries[i].Present = present
	}
	r.records[dateKey] = entries
	r.metrics.mutation("mark_all")
	return r.persistLocked(ctx)
}

// Summarize counts the bucket as currently materialized. A never-loaded date
// yields zeros.
func (r *Register) Summarize(dateKey string) register.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum register.Summary
	for _, e := range r.records[dateKey] {
		sum.Total++
		if e.Present {
			sum.Present++
		}
	}
	return sum
}

// Students returns a copy of the roster in insertion order.
func (r *Register) Students() []register.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return register.CloneStudents(r.students)
}

// Day returns a copy of the bucket for dateKey without materializing it.
func (r *Register) Day(dateKey string) []register.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return register.CloneEntries(r.records[dateKey])
}

// Dates returns every materialized date key, unordered.
func (r *Register) Dates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.records))
	for date := range r.records {
		out = append(out, date)
	}
	return out
}

// SnapshotState exports both tables as a deep copy, for backups.
func (r *Register) SnapshotState() register.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := register.Snapshot{Students: r.students, Records: r.records}
	return snap.Clone()
}

// ReplaceState overwrites both tables with the snapshot's content and
// persists. This is a destructive replace, not a merge; callers own user
// confirmation.
func (r *Register) ReplaceState(ctx context.Context, snap register.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := snap.Clone()
	r.students = clone.Students
	if clone.Records != nil {
		r.records = clone.Records
	} else {
		r.records = make(map[string][]register.Entry)
	}
	r.metrics.mutation("replace_state")
	r.metrics.observeSizes(len(r.students), len(r.records))
	return r.persistLocked(ctx)
}

func (r *Register) findRoll(roll string) int {
	for i, s := range r.students {
		if s.Roll == roll {
			return i
		}
	}
	return -1
}
