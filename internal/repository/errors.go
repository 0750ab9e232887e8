// Package repository implements the MySQL data access layer. Failures the
// service layer must react to are surfaced as typed values declared here:
// sentinel errors for missing rows and duplicate attendance, and
// DuplicateError for unique-key collisions on member creation. Handlers
// never inspect raw driver error text; translation from the driver's
// typed errors happens once, in this package.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced row does not exist, either
// because a lookup matched nothing or because an update/delete touched
// zero rows. Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRecorded is returned when an attendance insert hits the
// unique (member_id, film_id) key. The constraint, not the prior
// existence check, is the arbiter: two concurrent registrations for the
// same pair can both pass the check, but only one insert succeeds.
var ErrAlreadyRecorded = errors.New("attendance already recorded")

// Duplicate fields reported by DuplicateError. They name which unique key
// on the members table fired.
const (
	DupUsername       = "username"
	DupTaxCode        = "taxCode"
	DupMembershipCode = "membershipCode"
	DupGeneric        = "duplicate"
)

// DuplicateError reports a unique-key collision on member creation or
// update. Field identifies the conflicting column so the handler can
// produce a precise message per kind.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}

// MySQL server error numbers used for translation.
const (
	mysqlErrDupEntry = 1062
	mysqlErrNoRefRow = 1452
)

// Named unique keys from the schema. The 1062 message always carries the
// key name ("... for key 'members.uq_members_username'"), which lets us
// tell the constraints apart without guessing from arbitrary text.
var memberUniqueKeys = map[string]string{
	"uq_members_username":        DupUsername,
	"uq_members_tax_code":        DupTaxCode,
	"uq_members_membership_code": DupMembershipCode,
}

// translateMemberErr maps driver errors from member writes to the typed
// taxonomy. Unrecognized errors pass through untouched.
func translateMemberErr(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlErrDupEntry {
		return err
	}
	for key, field := range memberUniqueKeys {
		if strings.Contains(me.Message, key) {
			return &DuplicateError{Field: field}
		}
	}
	return &DuplicateError{Field: DupGeneric}
}

// translateRefErr maps a foreign-key failure (the referenced row is
// gone) to ErrNotFound and passes everything else through.
func translateRefErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrNoRefRow {
		return ErrNotFound
	}
	return err
}

// translateAttendanceErr maps driver errors from attendance inserts: a
// duplicate on the pair key means the attendance already exists, and a
// foreign-key failure means the referenced film is gone (the member was
// resolved just before the insert).
func translateAttendanceErr(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlErrDupEntry:
		return ErrAlreadyRecorded
	case mysqlErrNoRefRow:
		return ErrNotFound
	}
	return err
}
