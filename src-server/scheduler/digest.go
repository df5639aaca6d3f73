package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"teamcal/src-server/calendar"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

// Discord rejects messages with more embeds than this.
const maxEmbedsPerMessage = 10

// EmbedSender is the part of *discordgo.Session the digest needs.
type EmbedSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Digest posts every channel's events for the day on the DIGEST_CRON
// schedule, until the app shuts down.
func Digest(as *utils.AppState) {
	c := cron.New(cron.WithLocation(as.Config.GetLocation()))
	if _, err := c.AddFunc(as.Config.GetDigestCron(), func() {
		startTimer := time.Now()
		sent, err := SendDigest(context.Background(), as.BunDB, as.DgSession, calendar.DateOf(as.Now()))
		if err != nil {
			slog.Error("Digest: can't send digest", "error", err)
			return
		}
		slog.Info("digest sent", "channels", sent, "took", time.Since(startTimer))
	}); err != nil {
		slog.Error("Digest: invalid schedule", "schedule", as.Config.GetDigestCron(), "error", err)
		return
	}

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	c.Start()
	slog.Debug("digest scheduled", "schedule", as.Config.GetDigestCron())
	<-gracefulShutdownCh
	<-c.Stop().Done()
	slog.Debug("digest scheduler stopped")
}

// SendDigest posts the events on date to their channels and returns how
// many channels got a message. A failing channel does not stop the others.
func SendDigest(ctx context.Context, db bun.IDB, sender EmbedSender, date calendar.Date) (int, error) {
	channelsToEvents, err := model.EventsOn(ctx, db, date)
	if err != nil {
		return 0, fmt.Errorf("SendDigest: %w", err)
	}

	sent := 0
channels:
	for channelID, events := range channelsToEvents {
		for _, msg := range digestMessages(date, events) {
			if _, err := sender.ChannelMessageSendComplex(channelID, msg); err != nil {
				slog.Error("SendDigest: can't send message", "channel", channelID, "error", err)
				continue channels
			}
		}
		sent++
	}
	return sent, nil
}

func digestMessages(date calendar.Date, events []calendar.Event) []*discordgo.MessageSend {
	msgs := make([]*discordgo.MessageSend, 0, (len(events)+maxEmbedsPerMessage-1)/maxEmbedsPerMessage)
	for start := 0; start < len(events); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(events))
		embeds := make([]*discordgo.MessageEmbed, 0, end-start)
		for _, e := range events[start:end] {
			embeds = append(embeds, model.ToDiscordEmbed(e))
		}
		msg := &discordgo.MessageSend{Embeds: embeds}
		if start == 0 {
			msg.Content = fmt.Sprintf("Today, <t:%d:D>: %d event(s)", date.Time().Unix(), len(events))
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
