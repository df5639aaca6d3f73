package route_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"teamcal/src-server/calendar"
	"teamcal/src-server/model"
	"teamcal/src-server/route"
	"teamcal/src-server/utils"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const testSecret = "test-session-secret"

func newTestServer(t *testing.T) (*httptest.Server, *utils.AppState) {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	if _, err := bundb.NewInsert().Model(&model.Session{
		Secret:           testSecret,
		Purpose:          model.SESSION_MODEL_PURPOSE_SESSION,
		UserID:           "user-1",
		ChannelID:        "chan-1",
		CreatedAtUnixUTC: time.Now().Unix(),
	}).Exec(context.Background()); err != nil {
		t.Fatal(err)
	}

	as := &utils.AppState{
		Config:      utils.DefaultConfig(),
		BunDB:       bundb,
		When:        utils.NewWhen(),
		MetricChans: utils.NewMetric(),
	}
	muxer := http.NewServeMux()
	route.Auth(muxer, as)
	route.Calendar(muxer, as)
	route.Ical(muxer, as)

	server := httptest.NewServer(muxer)
	t.Cleanup(func() {
		server.Close()
		bundb.Close()
	})
	return server, as
}

func do(t *testing.T, server *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testSecret)
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCalendarEventLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	// case: saving without a date is rejected
	resp := do(t, server, http.MethodPost, "/calendar/events", map[string]string{"title": "Standup"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("dateless create: status %d", resp.StatusCode)
	}

	// case: create
	resp = do(t, server, http.MethodPost, "/calendar/events", map[string]string{
		"title": "Standup",
		"date":  "2024-12-15",
		"type":  "meeting",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	created := decode[calendar.Event](t, resp)
	if created.ID == "" || created.Title != "Standup" {
		t.Fatalf("created %+v", created)
	}

	onDate := decode[[]calendar.Event](t, do(t, server, http.MethodGet, "/calendar/events?date=2024-12-15", nil))
	if len(onDate) != 1 || onDate[0].Title != "Standup" {
		t.Fatalf("events on date: %+v", onDate)
	}

	// case: update does not duplicate
	resp = do(t, server, http.MethodPut, "/calendar/events/"+created.ID, map[string]string{
		"title": "Standup v2",
		"type":  "meeting",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	onDate = decode[[]calendar.Event](t, do(t, server, http.MethodGet, "/calendar/events?date=2024-12-15", nil))
	if len(onDate) != 1 || onDate[0].Title != "Standup v2" || onDate[0].ID != created.ID {
		t.Fatalf("after update: %+v", onDate)
	}

	// case: update of a missing event
	resp = do(t, server, http.MethodPut, "/calendar/events/missing", map[string]string{"title": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing update: status %d", resp.StatusCode)
	}

	// case: delete, twice
	for i := 0; i < 2; i++ {
		resp = do(t, server, http.MethodDelete, "/calendar/events/"+created.ID, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("delete %d: status %d", i, resp.StatusCode)
		}
	}
	onDate = decode[[]calendar.Event](t, do(t, server, http.MethodGet, "/calendar/events?date=2024-12-15", nil))
	if len(onDate) != 0 {
		t.Errorf("after delete: %+v", onDate)
	}
}

func TestCalendarRejectsUnknownType(t *testing.T) {
	server, _ := newTestServer(t)
	resp := do(t, server, http.MethodPost, "/calendar/events", map[string]string{
		"title": "Party",
		"date":  "2024-12-15",
		"type":  "party",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestCalendarGrid(t *testing.T) {
	server, _ := newTestServer(t)
	for _, title := range []string{"a", "b", "c"} {
		resp := do(t, server, http.MethodPost, "/calendar/events", map[string]string{"title": title, "date": "2025-01-06"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s: status %d", title, resp.StatusCode)
		}
	}

	resp := do(t, server, http.MethodGet, "/calendar/grid?year=2024&month=12&move=next&selected=2025-01-06", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	grid := decode[route.GridRespBody](t, resp)
	if grid.Cursor != (calendar.Cursor{Year: 2025, Month: time.January}) {
		t.Errorf("cursor %+v", grid.Cursor)
	}
	if len(grid.SelectedEvents) != 3 {
		t.Errorf("selected events %+v", grid.SelectedEvents)
	}

	// January 2025 starts on a Wednesday: Monday the 6th is row 1, column 1
	if grid.Weeks[0][0] != nil || grid.Weeks[0][3] == nil || grid.Weeks[0][3].Date.Day != 1 {
		t.Errorf("first week %+v", grid.Weeks[0])
	}
	cell := grid.Weeks[1][1]
	if cell == nil || cell.Date.Day != 6 || len(cell.Events) != calendar.PreviewLimit || cell.More != 1 {
		t.Errorf("cell for the 6th: %+v", cell)
	}

	resp = do(t, server, http.MethodGet, "/calendar/grid?year=2024&month=2&move=prev&by=year", nil)
	grid = decode[route.GridRespBody](t, resp)
	if grid.Cursor != (calendar.Cursor{Year: 2023, Month: time.February}) {
		t.Errorf("year navigation cursor %+v", grid.Cursor)
	}

	resp = do(t, server, http.MethodGet, "/calendar/grid?year=2024&month=12&selected=2025-01-06", nil)
	grid = decode[route.GridRespBody](t, resp)
	if !grid.Selected.IsZero() || len(grid.SelectedEvents) != 0 {
		t.Errorf("selection outside the shown month: %s, %+v", grid.Selected, grid.SelectedEvents)
	}

	resp = do(t, server, http.MethodGet, "/calendar/grid?month=13", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("month 13: status %d", resp.StatusCode)
	}
}

func TestCalendarSeries(t *testing.T) {
	server, _ := newTestServer(t)
	resp := do(t, server, http.MethodPost, "/calendar/series", map[string]string{
		"title": "Weekly sync",
		"rule":  "FREQ=WEEKLY;BYDAY=MO",
		"from":  "2024-12-02",
		"until": "2024-12-31",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	created := decode[[]calendar.Event](t, resp)
	if len(created) != 5 {
		t.Errorf("created %d events, want 5", len(created))
	}

	resp = do(t, server, http.MethodPost, "/calendar/series", map[string]string{
		"rule": "NOT A RULE", "from": "2024-12-02", "until": "2024-12-31",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad rule: status %d", resp.StatusCode)
	}

	resp = do(t, server, http.MethodPost, "/calendar/series", map[string]string{
		"rule": "FREQ=HOURLY", "from": "2024-12-02", "until": "2024-12-03",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("hourly rule: status %d", resp.StatusCode)
	}
	onDate := decode[[]calendar.Event](t, do(t, server, http.MethodGet, "/calendar/events?date=2024-12-03", nil))
	if len(onDate) != 0 {
		t.Errorf("rejected series left events behind: %+v", onDate)
	}
}

func TestCalendarRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := server.Client().Get(server.URL + "/calendar/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestIcalFeed(t *testing.T) {
	server, _ := newTestServer(t)
	for _, date := range []string{"2024-12-15", "2024-12-21"} {
		do(t, server, http.MethodPost, "/calendar/events", map[string]string{"title": "Launch", "date": date, "type": "launch"})
	}

	resp, err := server.Client().Get(server.URL + "/ical/chan-1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.String()
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("%d VEVENTs in\n%s", n, body)
	}
	if !strings.Contains(body, "CATEGORIES:launch") {
		t.Errorf("missing category in\n%s", body)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/ical/chan-1", nil)
	req.Header.Set("If-None-Match", resp.Header.Get("ETag"))
	cached, err := server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer cached.Body.Close()
	if cached.StatusCode != http.StatusNotModified {
		t.Errorf("conditional get: status %d", cached.StatusCode)
	}

	missing, err := server.Client().Get(server.URL + "/ical/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing calendar: status %d", missing.StatusCode)
	}
}

func TestAuthExchange(t *testing.T) {
	server, as := newTestServer(t)
	if _, err := as.BunDB.NewInsert().Model(&model.Session{
		Secret:           "temp-key",
		Purpose:          model.SESSION_MODEL_PURPOSE_TEMP,
		UserID:           "user-1",
		ChannelID:        "chan-1",
		CreatedAtUnixUTC: time.Now().Unix(),
	}).Exec(context.Background()); err != nil {
		t.Fatal(err)
	}

	post := func() *http.Response {
		resp, err := server.Client().Post(server.URL+"/auth", "application/json", strings.NewReader(`{"tempKey":"temp-key"}`))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == route.SessionSecretCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no session cookie")
	}

	// the key is one-time
	if resp := post(); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("reused key: status %d", resp.StatusCode)
	}

	session, err := model.FindSession(context.Background(), as.BunDB, cookie.Value, model.SESSION_MODEL_PURPOSE_SESSION)
	if err != nil || session == nil || session.ChannelID != "chan-1" {
		t.Errorf("session %+v, %v", session, err)
	}
}
