package register

import "fmt"

// ErrDuplicateRoll is returned when an add or update would give two roster
// members the same roll.
type ErrDuplicateRoll struct {
	Roll string
}

func (e ErrDuplicateRoll) Error() string {
	return fmt.Sprintf("roll %s already taken by another student", e.Roll)
}

// ErrRollNotFound is returned when an attendance mutation targets a roll that
// is absent from the bucket even after materialization. Materialization
// guarantees an entry for every current student, so hitting this means the
// roll is not in the roster.
type ErrRollNotFound struct {
	Roll string
	Date string
}

func (e ErrRollNotFound) Error() string {
	return fmt.Sprintf("roll %s not present for %s", e.Roll, e.Date)
}

// ErrStudentNotFound is returned when an update targets a roll that is not
// in the roster. Deletion of an unknown roll is a no-op instead.
type ErrStudentNotFound struct {
	Roll string
}

func (e ErrStudentNotFound) Error() string {
	return fmt.Sprintf("no student with roll %s", e.Roll)
}

// ErrInvalidBackup is returned when a backup document is missing one of its
// required top-level fields. Validation is structural only.
type ErrInvalidBackup struct {
	Missing string
}

func (e ErrInvalidBackup) Error() string {
	return fmt.Sprintf("invalid backup document: missing %q field", e.Missing)
}
