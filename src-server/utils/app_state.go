package utils

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"teamcal/src-server/calendar"
	"teamcal/src-server/model"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppCmdHandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type AppState struct {
	Config      *Config
	RawDB       *sql.DB
	BunDB       *bun.DB
	DgSession   *discordgo.Session
	When        *when.Parser
	MetricChans *Metric

	// events every new calendar starts with
	Seed []calendar.Event

	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]AppCmdHandlerFunc

	AppCloseSignalChan chan os.Signal

	startedAt             time.Time
	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState(config *Config) *AppState {
	as := &AppState{
		Config:             config,
		When:               NewWhen(),
		MetricChans:        NewMetric(),
		appCmdInfo:         make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:      make(map[string]AppCmdHandlerFunc),
		AppCloseSignalChan: make(chan os.Signal, 1),
		startedAt:          time.Now(),
	}

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, "file:"+config.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	as.Seed, err = model.LoadSeed(config.GetSeedFile())
	if err != nil {
		slog.Error("can't load seed events", "error", err)
		os.Exit(1)
	}
	slog.Debug("seed events loaded", "count", len(as.Seed))

	// discord
	as.DgSession, err = discordgo.New("Bot " + config.GetDiscordAppToken())
	if err != nil {
		slog.Error("can't create discord session", "error", err)
		os.Exit(1)
	}

	return as
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	if as.appCmdInfo == nil {
		as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
	}
	as.appCmdInfo[id] = info
}

func (as *AppState) AddAppCmdHandler(id string, handler AppCmdHandlerFunc) {
	if as.appCmdHandler == nil {
		as.appCmdHandler = make(map[string]AppCmdHandlerFunc)
	}
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (AppCmdHandlerFunc, bool) {
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

func (as *AppState) IterateAppCmdInfo(fn func(id string, info *discordgo.ApplicationCommand)) {
	for id, info := range as.appCmdInfo {
		fn(id, info)
	}
}

// NukeAppCmdInfo drops the command definitions once Discord has them.
func (as *AppState) NukeAppCmdInfo() {
	as.appCmdInfo = nil
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt).Round(time.Second)
}

// Now is the current time in the configured timezone.
func (as *AppState) Now() time.Time {
	if as.Config == nil || as.Config.GetLocation() == nil {
		return time.Now()
	}
	return time.Now().In(as.Config.GetLocation())
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
