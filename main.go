package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"teamcal/src-server/handler"
	"teamcal/src-server/metric"
	"teamcal/src-server/route"
	"teamcal/src-server/scheduler"
	"teamcal/src-server/utils"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// There are 2 important things (and others) inside the AppState:
	// - appCmdInfo: a map of all slash commands
	// - appCmdHandler: a map of all slash command handlers
	as := utils.NewAppState(utils.NewConfig())

	// injecting interaction handlers into appCmdInfo, appCmdHandler in AppState
	handler.Login(as)
	handler.Ping(as)
	handler.Agenda(as)

	// tell discordgo how to handle interactions from Discord (w/ appCmdHandler)
	as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			slog.Debug("ignoring interaction", "type", i.Type)
			return
		}
		name := i.ApplicationCommandData().Name
		handler, ok := as.GetAppCmdHandler(name)
		if !ok {
			if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Flags:   discordgo.MessageFlagsEphemeral,
					Content: "Unknown command",
				},
			}); err != nil {
				slog.Warn("can't respond", "error", err)
			}
			return
		}
		if err := handler(s, i); err != nil {
			slog.Error("handler error", "command", name, "error", err)
		}
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open discord connection", "error", err)
		os.Exit(1)
	}

	// tell Discord what commands we have (w/ appCmdInfo)
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientId(),
		as.Config.GetDiscordGuildID(),
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(_ string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err)
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	metric.Init(as)
	go scheduler.Digest(as)

	// http server
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	route.Auth(muxer, as)
	route.Calendar(muxer, as)
	route.Ical(muxer, as)
	route.SPA(muxer, as)

	server := &http.Server{
		Addr: ":" + as.Config.GetPort(),
		Handler: cors.New(cors.Options{
			AllowedOrigins:   as.Config.GetCorsAllowedOrigins(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "If-None-Match"},
			AllowCredentials: true,
		}).Handler(muxer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	if err := server.Close(); err != nil {
		slog.Warn("can't close HTTP server", "error", err)
	}
	as.GracefulShutdown()
}
