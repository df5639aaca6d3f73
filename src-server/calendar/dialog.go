package calendar

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid dialog transition")

type DialogState int

const (
	DialogClosed DialogState = iota
	DialogCreating
	DialogEditing
)

func (s DialogState) String() string {
	switch s {
	case DialogCreating:
		return "creating"
	case DialogEditing:
		return "editing"
	default:
		return "closed"
	}
}

// Dialog is the create/edit event form:
//
//	closed -> creating (OpenCreate) -> closed (Save, Cancel)
//	closed -> editing  (OpenEdit)   -> closed (Save, Cancel, Delete)
//
// A failed Save leaves the dialog open so the draft can be fixed.
type Dialog struct {
	state   DialogState
	editing *Event
	target  Date

	Draft Draft
}

func (d *Dialog) State() DialogState {
	return d.state
}

// Editing returns the event being edited, if any.
func (d *Dialog) Editing() (Event, bool) {
	if d.editing == nil {
		return Event{}, false
	}
	return *d.editing, true
}

// Target is the date the draft will be saved on.
func (d *Dialog) Target() Date {
	return d.target
}

// SetTarget moves the draft to another date before saving.
func (d *Dialog) SetTarget(date Date) error {
	if d.state == DialogClosed {
		return fmt.Errorf("%w: set target while %s", ErrInvalidTransition, d.state)
	}
	d.target = date
	return nil
}

// OpenCreate opens an empty draft on date, the double-click on a day cell.
func (d *Dialog) OpenCreate(date Date) error {
	if d.state != DialogClosed {
		return fmt.Errorf("%w: create while %s", ErrInvalidTransition, d.state)
	}
	d.state = DialogCreating
	d.editing = nil
	d.target = date
	d.Draft = Draft{Type: Meeting}
	return nil
}

// OpenEdit opens a draft prefilled from e.
func (d *Dialog) OpenEdit(e Event) error {
	if d.state != DialogClosed {
		return fmt.Errorf("%w: edit while %s", ErrInvalidTransition, d.state)
	}
	d.state = DialogEditing
	d.editing = &e
	d.target = e.Date
	d.Draft = DraftOf(e)
	return nil
}

// Save commits the draft to m and closes the dialog.
func (d *Dialog) Save(m *Model) (Event, error) {
	if d.state == DialogClosed {
		return Event{}, fmt.Errorf("%w: save while %s", ErrInvalidTransition, d.state)
	}
	e, err := m.SaveEvent(d.Draft, d.target, d.editing)
	if err != nil {
		return Event{}, err
	}
	d.reset()
	return e, nil
}

// Delete removes the edited event from m and closes the dialog.
// It reports whether the event was still there.
func (d *Dialog) Delete(m *Model) (bool, error) {
	if d.state != DialogEditing {
		return false, fmt.Errorf("%w: delete while %s", ErrInvalidTransition, d.state)
	}
	removed := m.DeleteEvent(d.editing.ID)
	d.reset()
	return removed, nil
}

func (d *Dialog) Cancel() {
	d.reset()
}

func (d *Dialog) reset() {
	d.state = DialogClosed
	d.editing = nil
	d.target = Date{}
	d.Draft = Draft{}
}
