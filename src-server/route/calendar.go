package route

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"teamcal/src-server/calendar"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/uptrace/bun"
)

type SaveEventReqBody struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Time        string             `json:"time"`
	Type        calendar.EventType `json:"type"`
	Date        calendar.Date      `json:"date"`
}

func (b SaveEventReqBody) draft() calendar.Draft {
	return calendar.Draft{
		Title:       b.Title,
		Description: b.Description,
		Time:        b.Time,
		Type:        b.Type,
	}
}

type CreateSeriesReqBody struct {
	SaveEventReqBody
	Rule  string        `json:"rule"`
	From  calendar.Date `json:"from"`
	Until calendar.Date `json:"until"`
}

type CellRespBody struct {
	Date   calendar.Date    `json:"date"`
	Today  bool             `json:"today,omitempty"`
	Events []calendar.Event `json:"events"`
	More   int              `json:"more"`
}

type GridRespBody struct {
	Cursor         calendar.Cursor   `json:"cursor"`
	Title          string            `json:"title"`
	Selected       calendar.Date     `json:"selected"`
	SelectedEvents []calendar.Event  `json:"selectedEvents"`
	Weeks          [][]*CellRespBody `json:"weeks"`
}

type JumpRespBody struct {
	Cursor   calendar.Cursor `json:"cursor"`
	Selected calendar.Date   `json:"selected"`
}

func Calendar(muxer *http.ServeMux, as *utils.AppState) {
	// month grid, with optional navigation and selection
	muxer.HandleFunc("GET /calendar/grid", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			now := as.Now()
			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, now)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}

			// #region - parse cursor, navigation and selection
			q := r.URL.Query()
			cursor := m.Cursor()
			if year := q.Get("year"); year != "" {
				if cursor.Year, err = strconv.Atoi(year); err != nil {
					respondError(w, http.StatusBadRequest, "Invalid year")
					return
				}
			}
			if month := q.Get("month"); month != "" {
				n, err := strconv.Atoi(month)
				if err != nil || n < 1 || n > 12 {
					respondError(w, http.StatusBadRequest, "Invalid month, want 1-12")
					return
				}
				cursor.Month = time.Month(n)
			}
			m.SetCursor(cursor)

			if move := q.Get("move"); move != "" {
				dir, err := calendar.ParseDirection(move)
				if err != nil {
					respondError(w, http.StatusBadRequest, err.Error())
					return
				}
				switch q.Get("by") {
				case "", "month":
					m.NavigateMonth(dir)
				case "year":
					m.NavigateYear(dir)
				default:
					respondError(w, http.StatusBadRequest, "Invalid by, want month or year")
					return
				}
			}

			if selected := q.Get("selected"); selected != "" {
				d, err := calendar.ParseDate(selected)
				if err != nil {
					respondError(w, http.StatusBadRequest, err.Error())
					return
				}
				m.Select(d)
			}
			// #endregion

			respondJSON(w, http.StatusOK, buildGrid(m, calendar.DateOf(now)))
		}))

	// events on one date, or every event when no date is given
	muxer.HandleFunc("GET /calendar/events", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			now := as.Now()
			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, now)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}

			text := r.URL.Query().Get("date")
			if text == "" {
				respondJSON(w, http.StatusOK, m.Events())
				return
			}
			date, err := utils.ParseNaturalDate(as.When, text, now)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Can't understand the date")
				return
			}
			respondJSON(w, http.StatusOK, m.EventsForDate(date))
		}))

	// natural language date to cursor + selection
	muxer.HandleFunc("GET /calendar/jump", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			date, err := utils.ParseNaturalDate(as.When, r.URL.Query().Get("q"), as.Now())
			if err != nil {
				respondError(w, http.StatusBadRequest, "Can't understand the date")
				return
			}
			respondJSON(w, http.StatusOK, JumpRespBody{
				Cursor:   calendar.Cursor{Year: date.Year, Month: date.Month},
				Selected: date,
			})
		}))

	// create an event, responds with the saved event
	muxer.HandleFunc("POST /calendar/events", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			var reqBody SaveEventReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, as.Now())
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}

			var dialog calendar.Dialog
			if err := dialog.OpenCreate(reqBody.Date); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			dialog.Draft = reqBody.draft()
			saved, err := dialog.Save(m)
			if err != nil {
				respondSaveError(w, err)
				return
			}

			if err := persistEvents(r.Context(), as, sessionModel.ChannelID, saved); err != nil {
				respondError(w, http.StatusInternalServerError, "Can't create event")
				slog.Error("can't create event", "channel", sessionModel.ChannelID, "error", err)
				return
			}
			respondJSON(w, http.StatusCreated, saved)
		}))

	// replace an existing event
	muxer.HandleFunc("PUT /calendar/events/{id}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			var reqBody SaveEventReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, as.Now())
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}

			existing, ok := m.Event(r.PathValue("id"))
			if !ok {
				respondError(w, http.StatusNotFound, "Event not found")
				return
			}

			var dialog calendar.Dialog
			if err := dialog.OpenEdit(existing); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			dialog.Draft = reqBody.draft()
			if !reqBody.Date.IsZero() {
				if err := dialog.SetTarget(reqBody.Date); err != nil {
					respondError(w, http.StatusInternalServerError, err.Error())
					return
				}
			}
			saved, err := dialog.Save(m)
			if err != nil {
				respondSaveError(w, err)
				return
			}

			if err := persistEvents(r.Context(), as, sessionModel.ChannelID, saved); err != nil {
				respondError(w, http.StatusInternalServerError, "Can't modify event")
				slog.Error("can't modify event", "channel", sessionModel.ChannelID, "error", err)
				return
			}
			respondJSON(w, http.StatusOK, saved)
		}))

	// delete an event, deleting a missing event is not an error
	muxer.HandleFunc("DELETE /calendar/events/{id}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, as.Now())
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}

			existing, ok := m.Event(r.PathValue("id"))
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			var dialog calendar.Dialog
			if err := dialog.OpenEdit(existing); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if _, err := dialog.Delete(m); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}

			startTimer := time.Now()
			if err := model.DeleteEvent(r.Context(), as.BunDB, sessionModel.ChannelID, existing.ID); err != nil {
				respondError(w, http.StatusInternalServerError, "Can't delete event")
				slog.Error("can't delete event", "channel", sessionModel.ChannelID, "error", err)
				return
			}
			as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)

			w.WriteHeader(http.StatusNoContent)
		}))

	// create one event per occurrence of a recurrence rule
	muxer.HandleFunc("POST /calendar/series", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := sessionFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusInternalServerError, "Can't get session from middleware")
				return
			}

			var reqBody CreateSeriesReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			dates, err := calendar.SeriesDates(reqBody.Rule, reqBody.From, reqBody.Until)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}

			m, err := loadModel(r.Context(), as, sessionModel.ChannelID, as.Now())
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Can't get events")
				slog.Error("can't load calendar model", "channel", sessionModel.ChannelID, "error", err)
				return
			}
			created, err := m.SaveSeries(reqBody.draft(), dates)
			if err != nil {
				respondSaveError(w, err)
				return
			}

			if err := persistEvents(r.Context(), as, sessionModel.ChannelID, created...); err != nil {
				respondError(w, http.StatusInternalServerError, "Can't create events")
				slog.Error("can't create series", "channel", sessionModel.ChannelID, "error", err)
				return
			}
			respondJSON(w, http.StatusCreated, created)
		}))
}

func buildGrid(m *calendar.Model, today calendar.Date) GridRespBody {
	cursor := m.Cursor()
	respBody := GridRespBody{
		Cursor:         cursor,
		Title:          cursor.String(),
		SelectedEvents: make([]calendar.Event, 0),
	}
	// a selection only shows while its month is on screen
	if selected, ok := m.SelectedDate(); ok && cursor.Contains(selected) {
		respBody.Selected = selected
		respBody.SelectedEvents = m.EventsForDate(selected)
	}

	for _, week := range calendar.Weeks(m.DaysInMonth()) {
		row := make([]*CellRespBody, len(week))
		for i, date := range week {
			if date.IsZero() {
				continue
			}
			shown, more := calendar.Preview(m.EventsForDate(date), calendar.PreviewLimit)
			row[i] = &CellRespBody{
				Date:   date,
				Today:  date == today,
				Events: shown,
				More:   more,
			}
		}
		respBody.Weeks = append(respBody.Weeks, row)
	}
	return respBody
}

func respondSaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrNoDateSelected):
		respondError(w, http.StatusBadRequest, "Please select a date")
	case errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, calendar.ErrUnknownEventType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "Event not found")
	default:
		respondError(w, http.StatusInternalServerError, "Can't save event")
		slog.Error("can't save event", "error", err)
	}
}

// loadModel makes sure the channel has a calendar, then reads it.
func loadModel(ctx context.Context, as *utils.AppState, channelID string, now time.Time) (*calendar.Model, error) {
	startTimer := time.Now()
	if err := model.EnsureCalendar(ctx, as.BunDB, channelID, "", as.Seed); err != nil {
		return nil, err
	}
	m, err := model.LoadModel(ctx, as.BunDB, channelID, now)
	if err != nil {
		return nil, err
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
	return m, nil
}

func persistEvents(ctx context.Context, as *utils.AppState, channelID string, events ...calendar.Event) error {
	startTimer := time.Now()
	if err := as.BunDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, e := range events {
			if err := model.EventFromCalendar(channelID, e).Upsert(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
	return nil
}
