package handler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState) {
	id := "ping"
	as.AddAppCmdHandler(id, pingHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Check that the calendar bot is alive.",
	})
}

func pingHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		memUsage := float64(mem.Sys) / 1024 / 1024

		eventCount := "-"
		startTimer := time.Now()
		if n, err := as.BunDB.NewSelect().
			Model((*model.Event)(nil)).
			Where("channel_id = ?", i.ChannelID).
			Count(context.Background()); err != nil {
			slog.Warn("pingHandler: can't count events", "error", err)
		} else {
			eventCount = strconv.Itoa(n)
			as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
		}

		embeds := []*discordgo.MessageEmbed{
			{
				Title: "Pong!",
				Footer: &discordgo.MessageEmbedFooter{
					Text: i.ChannelID,
				},
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  "Uptime",
						Value: as.GetUptime().String(),
					},
					{
						Name:   "Latency",
						Value:  fmt.Sprintf("%dms", s.HeartbeatLatency().Milliseconds()),
						Inline: true,
					},
					{
						Name:   "Memory",
						Value:  fmt.Sprintf("%.2fMB", memUsage),
						Inline: true,
					},
					{
						Name:   "Timezone",
						Value:  as.Config.GetLocation().String(),
						Inline: true,
					},
					{
						Name:   "Events in this channel",
						Value:  eventCount,
						Inline: true,
					},
				},
			},
		}

		startTimer = time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: embeds,
			},
		}); err != nil {
			slog.Warn("pingHandler: can't respond", "error", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
