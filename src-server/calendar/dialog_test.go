package calendar_test

import (
	"errors"
	"teamcal/src-server/calendar"
	"testing"
)

func TestDialogCreate(t *testing.T) {
	m := newModel()
	var d calendar.Dialog

	if err := d.OpenCreate(dec15); err != nil {
		t.Fatal(err)
	}
	if d.State() != calendar.DialogCreating {
		t.Fatalf("state = %s", d.State())
	}
	if d.Draft.Type != calendar.Meeting {
		t.Errorf("fresh draft type = %q", d.Draft.Type)
	}
	d.Draft.Title = "Standup"

	e, err := d.Save(m)
	if err != nil {
		t.Fatal(err)
	}
	if d.State() != calendar.DialogClosed {
		t.Errorf("state after save = %s", d.State())
	}
	if got := m.EventsForDate(dec15); len(got) != 1 || got[0].ID != e.ID {
		t.Errorf("EventsForDate = %+v", got)
	}
}

func TestDialogEditAndDelete(t *testing.T) {
	m := newModel()
	created, _ := m.SaveEvent(calendar.Draft{Title: "Standup"}, dec15, nil)

	var d calendar.Dialog
	if err := d.OpenEdit(created); err != nil {
		t.Fatal(err)
	}
	if d.State() != calendar.DialogEditing || d.Draft.Title != "Standup" {
		t.Fatalf("state %s draft %+v", d.State(), d.Draft)
	}
	d.Draft.Title = "Standup v2"
	if _, err := d.Save(m); err != nil {
		t.Fatal(err)
	}
	got := m.EventsForDate(dec15)
	if len(got) != 1 || got[0].Title != "Standup v2" {
		t.Errorf("after edit: %+v", got)
	}

	if err := d.OpenEdit(got[0]); err != nil {
		t.Fatal(err)
	}
	removed, err := d.Delete(m)
	if err != nil || !removed {
		t.Errorf("Delete = %v, %v", removed, err)
	}
	if d.State() != calendar.DialogClosed {
		t.Errorf("state after delete = %s", d.State())
	}
	if n := len(m.EventsForDate(dec15)); n != 0 {
		t.Errorf("%d events left", n)
	}
}

func TestDialogInvalidTransitions(t *testing.T) {
	m := newModel()
	var d calendar.Dialog

	if _, err := d.Save(m); !errors.Is(err, calendar.ErrInvalidTransition) {
		t.Errorf("save while closed: %v", err)
	}
	if _, err := d.Delete(m); !errors.Is(err, calendar.ErrInvalidTransition) {
		t.Errorf("delete while closed: %v", err)
	}

	_ = d.OpenCreate(dec15)
	if _, err := d.Delete(m); !errors.Is(err, calendar.ErrInvalidTransition) {
		t.Errorf("delete while creating: %v", err)
	}
	if err := d.OpenEdit(calendar.Event{ID: "x", Date: dec15}); !errors.Is(err, calendar.ErrInvalidTransition) {
		t.Errorf("edit while creating: %v", err)
	}
	d.Cancel()
	if d.State() != calendar.DialogClosed {
		t.Errorf("state after cancel = %s", d.State())
	}
	if n := len(m.Events()); n != 0 {
		t.Errorf("cancel saved %d events", n)
	}
}

func TestDialogFailedSaveStaysOpen(t *testing.T) {
	m := newModel()
	var d calendar.Dialog
	_ = d.OpenCreate(calendar.Date{})

	if _, err := d.Save(m); !errors.Is(err, calendar.ErrNoDateSelected) {
		t.Fatalf("got %v, want ErrNoDateSelected", err)
	}
	if d.State() != calendar.DialogCreating {
		t.Errorf("state = %s, want creating", d.State())
	}

	if err := d.SetTarget(dec15); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Save(m); err != nil {
		t.Fatal(err)
	}
}
