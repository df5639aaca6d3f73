package route

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	ics "github.com/arran4/golang-ical"
)

func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /ical/{channel_id}", func(w http.ResponseWriter, r *http.Request) {
		channelID := r.PathValue("channel_id")

		calendarModel := new(model.Calendar)
		if err := as.BunDB.NewSelect().
			Model(calendarModel).
			Where("channel_id = ?", channelID).
			Scan(r.Context()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, "Calendar not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "Can't get calendar")
			slog.Error("can't get calendar", "channel", channelID, "error", err)
			return
		}

		startTimer := time.Now()
		m, err := model.LoadModel(r.Context(), as.BunDB, channelID, as.Now())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Can't get events")
			slog.Error("can't load calendar model", "channel", channelID, "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)

		// the DTSTAMP changes every request, so the ETag hashes the events instead
		eventsJSON, err := json.Marshal(m.Events())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Can't encode events")
			return
		}
		etag := utils.ContentHash(append([]byte(calendarModel.Name+"\n"), eventsJSON...))
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		// all-day VEVENTs, DTEND is exclusive
		icalCalendar := ics.NewCalendar()
		icalCalendar.SetMethod(ics.MethodPublish)
		icalCalendar.SetProductId("-//teamcal//EN")
		icalCalendar.SetName(calendarModel.Name)
		stamp := time.Now().UTC()
		for _, e := range m.Events() {
			vevent := icalCalendar.AddEvent(e.ID)
			vevent.SetDtStampTime(stamp)
			vevent.SetSummary(e.Title)
			if e.Description != "" {
				vevent.SetDescription(e.Description)
			}
			vevent.SetAllDayStartAt(e.Date.Time())
			vevent.SetAllDayEndAt(e.Date.AddDays(1).Time())
			vevent.SetProperty(ics.ComponentPropertyCategories, string(e.Type))
			if e.Time != "" {
				vevent.SetProperty(ics.ComponentProperty("X-TEAMCAL-TIME"), e.Time)
			}
		}
		body := []byte(icalCalendar.Serialize())

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			slog.Warn("can't write to response", "where", "route/ical.go", "err", err)
		}
	})
}
