package handler

import (
	"context"
	"fmt"
	"log/slog"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func Login(as *utils.AppState) {
	id := "login"
	as.AddAppCmdHandler(id, loginHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Get a one-time key to open this channel's calendar in the web client",
	})
}

func loginHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		interaction := i.Interaction

		// #region - respond to the original request
		startTimer := time.Now()
		if err := s.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
			},
		}); err != nil {
			slog.Warn("loginHandler: can't send defer message", "error", err)
			return nil
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		// #endregion

		// #region - get the user ID from interaction
		userID := interactionUserID(i)
		if userID == "" {
			msg := "Can't get user ID from interaction."
			if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Content: &msg,
			}); err != nil {
				slog.Warn("loginHandler: can't send message about login", "error", err)
			}
			return fmt.Errorf("loginHandler: can't get user ID from interaction")
		}
		// #endregion

		// #region - make sure the channel has a calendar
		calendarName := "Untitled"
		if channel, err := s.Channel(i.ChannelID); err == nil {
			calendarName = utils.CalendarName(channel.Name)
		} else {
			slog.Warn("loginHandler: can't get channel name", "channel", i.ChannelID, "error", err)
		}
		startTimer = time.Now()
		if err := model.EnsureCalendar(context.Background(), as.BunDB, i.ChannelID, calendarName, as.Seed); err != nil {
			msg := fmt.Sprintf("Can't create calendar\n```\n%s\n```", err.Error())
			if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Content: &msg,
			}); err != nil {
				slog.Warn("loginHandler: can't send message about can't create calendar", "error", err)
			}
			return fmt.Errorf("loginHandler: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
		// #endregion

		// #region - insert temp key to DB
		secret := uuid.NewString()
		startTimer = time.Now()
		if _, err := as.BunDB.
			NewInsert().
			Model(&model.Session{
				Secret:           secret,
				Purpose:          model.SESSION_MODEL_PURPOSE_TEMP,
				UserID:           userID,
				ChannelID:        i.ChannelID,
				CreatedAtUnixUTC: time.Now().UTC().Unix(),
			}).
			Exec(context.Background()); err != nil {
			// edit the deferred message
			msg := fmt.Sprintf("Can't create session\n```\n%s\n```", err.Error())
			if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Content: &msg,
			}); err != nil {
				slog.Warn("loginHandler: can't send message about can't insert session", "error", err)
			}
			return fmt.Errorf("loginHandler: can't insert session: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
		// #endregion

		msg := fmt.Sprintf("Key for **%s**, valid for 5 minutes:\n```%s```", calendarName, secret)
		if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Content: &msg,
		}); err != nil {
			slog.Warn("loginHandler: can't respond about login successful", "error", err)
		}

		return nil
	}
}

// interactionUserID works for both guild and DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}
