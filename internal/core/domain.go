package core

import (
	"errors"
	"strings"
)

const (
	Game     SessionType = "игровая"
	Personal SessionType = "персональная"
)

// Draft field names, as posted by the form and used as export column headers.
const (
	FieldName         Field = "name"
	FieldDate         Field = "date"
	FieldType         Field = "type"
	FieldPlan         Field = "plan"
	FieldPaid         Field = "paid"
	FieldCost         Field = "cost"
	FieldAttended     Field = "attended"
	FieldAfterComment Field = "afterComment"
	FieldComment      Field = "comment"
	FieldBalance      Field = "balance"
)

type (
	SessionType string

	Field string

	// Draft is the single in-progress form state.
	Draft struct {
		Name         string
		Date         string // ISO YYYY-MM-DD, may be empty
		Type         SessionType
		Plan         string
		Paid         string // raw input, parsed on commit
		Cost         string // raw input, parsed on commit
		Attended     bool
		AfterComment string
		Comment      string
	}

	// Session is one committed training entry. It is never modified after
	// commit; Balance is frozen at that moment.
	Session struct {
		Name         string
		Date         string
		Type         SessionType
		Plan         string
		Paid         string
		Cost         string
		Attended     bool
		AfterComment string
		Comment      string
		Balance      string // paid - cost, two fractional digits
	}
)

var ErrUnknownField = errors.New("unknown draft field")

// DraftFields lists the editable fields in form order.
var DraftFields = []Field{
	FieldName, FieldDate, FieldType, FieldPlan, FieldPaid,
	FieldCost, FieldAttended, FieldAfterComment, FieldComment,
}

// Columns is the exported field set, in column order.
var Columns = append(append([]Field(nil), DraftFields...), FieldBalance)

// NewDraft returns the default, empty draft.
func NewDraft() Draft {
	return Draft{Type: Game}
}

// ParseField maps a posted field name to a draft field. Balance is derived
// and cannot be edited.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSpace(s))
	for _, known := range DraftFields {
		if f == known {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// Set assigns one field of the draft. Values are taken as given; only the
// attendance flag is interpreted.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldName:
		d.Name = value
	case FieldDate:
		d.Date = strings.TrimSpace(value)
	case FieldType:
		d.Type = ParseSessionType(value)
	case FieldPlan:
		d.Plan = value
	case FieldPaid:
		d.Paid = value
	case FieldCost:
		d.Cost = value
	case FieldAttended:
		d.Attended = ParseAttended(value)
	case FieldAfterComment:
		d.AfterComment = value
	case FieldComment:
		d.Comment = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Commit turns the draft into an immutable session, computing the balance.
func (d Draft) Commit() Session {
	return Session{
		Name:         d.Name,
		Date:         d.Date,
		Type:         d.Type,
		Plan:         d.Plan,
		Paid:         d.Paid,
		Cost:         d.Cost,
		Attended:     d.Attended,
		AfterComment: d.AfterComment,
		Comment:      d.Comment,
		Balance:      Balance(d.Paid, d.Cost),
	}
}

// ParseSessionType accepts the stored Russian values and their English
// aliases. Anything else is kept verbatim.
func ParseSessionType(v string) SessionType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case string(Game), "game":
		return Game
	case string(Personal), "personal":
		return Personal
	case "":
		return Game
	default:
		return SessionType(v)
	}
}

// Label is the capitalised name shown in the type selector.
func (t SessionType) Label() string {
	switch t {
	case Game:
		return "Игровая"
	case Personal:
		return "Персональная"
	default:
		return string(t)
	}
}

// ParseAttended interprets the attendance selector value.
func ParseAttended(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "да", "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}
