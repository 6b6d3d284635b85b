package core

import "fmt"

// Card is the display form of a session shared by the web list and the
// terminal report.
type Card struct {
	Name         string
	Date         string
	Type         string
	Plan         string
	Money        string
	Attended     string
	AfterComment string
	Comment      string
}

// NewCard formats s for display. Paid and cost are shown as entered.
func NewCard(s Session) Card {
	attended := "Нет"
	if s.Attended {
		attended = "Да"
	}
	return Card{
		Name:         s.Name,
		Date:         s.Date,
		Type:         string(s.Type),
		Plan:         s.Plan,
		Money:        fmt.Sprintf("Оплата: %s₽ | Стоимость: %s₽ | Баланс: %s₽", s.Paid, s.Cost, s.Balance),
		Attended:     attended,
		AfterComment: s.AfterComment,
		Comment:      s.Comment,
	}
}

// Heading is the card title: name, date and session type.
func (c Card) Heading() string {
	return fmt.Sprintf("%s — %s (%s)", c.Name, c.Date, c.Type)
}

// Cards formats every session in order.
func Cards(sessions []Session) []Card {
	out := make([]Card, len(sessions))
	for i, s := range sessions {
		out[i] = NewCard(s)
	}
	return out
}
