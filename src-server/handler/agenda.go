package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"teamcal/src-server/calendar"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects messages with more embeds than this.
const maxEmbeds = 10

func Agenda(as *utils.AppState) {
	id := "agenda"
	as.AddAppCmdHandler(id, agendaHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "List this channel's events for a day.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: "`YYYY-MM-DD` or plain English like `next friday`, defaults to today",
				Required:    false,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Only list events of this type",
				Required:    false,
				Choices:     eventTypeChoices(),
			},
		},
	})
}

func eventTypeChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(calendar.EventTypes))
	for _, t := range calendar.EventTypes {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  t.Label(),
			Value: string(t),
		})
	}
	return choices
}

func agendaHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		}); err != nil {
			slog.Warn("can't respond", "handler", "agenda", "content", "deferring", "error", err)
			return nil
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		editContent := func(content string) {
			if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: &content,
			}); err != nil {
				slog.Warn("can't respond", "handler", "agenda", "error", err)
			}
		}

		// #region - parse the options
		now := as.Now()
		date := calendar.DateOf(now)
		var eventType calendar.EventType
		for _, option := range i.ApplicationCommandData().Options {
			text := strings.TrimSpace(option.StringValue())
			if text == "" {
				continue
			}
			switch option.Name {
			case "date":
				parsed, err := utils.ParseNaturalDate(as.When, text, now)
				if err != nil {
					editContent(fmt.Sprintf("Can't understand the date `%s`", text))
					return nil
				}
				date = parsed
			case "type":
				parsed, err := calendar.ParseEventType(text)
				if err != nil {
					editContent(fmt.Sprintf("Unknown event type `%s`", text))
					return nil
				}
				eventType = parsed
			}
		}
		// #endregion

		// #region - get the events
		startTimer = time.Now()
		m, err := model.LoadModel(context.Background(), as.BunDB, i.ChannelID, now)
		if err != nil {
			editContent(fmt.Sprintf("Can't get events\n```\n%s\n```", err.Error()))
			return fmt.Errorf("agendaHandler: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
		events := filterByType(m.EventsForDate(date), eventType)
		// #endregion

		content, embeds := agendaMessage(date, events)
		startTimer = time.Now()
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: &content,
			Embeds:  &embeds,
		}); err != nil {
			slog.Warn("can't respond", "handler", "agenda", "content", "events-list", "error", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}

// filterByType keeps events of type t, or all of them when t is empty.
func filterByType(events []calendar.Event, t calendar.EventType) []calendar.Event {
	if t == "" {
		return events
	}
	out := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// agendaMessage builds the summary line and up to maxEmbeds event embeds.
func agendaMessage(date calendar.Date, events []calendar.Event) (string, []*discordgo.MessageEmbed) {
	dateText := fmt.Sprintf("<t:%d:D>", date.Time().Unix())
	embeds := make([]*discordgo.MessageEmbed, 0, min(len(events), maxEmbeds))
	for _, e := range events[:min(len(events), maxEmbeds)] {
		embeds = append(embeds, model.ToDiscordEmbed(e))
	}

	switch len(events) {
	case 0:
		return fmt.Sprintf("No event for %s", dateText), embeds
	case 1:
		return fmt.Sprintf("There is 1 event for %s", dateText), embeds
	}
	content := fmt.Sprintf("There are %d events for %s", len(events), dateText)
	if hidden := len(events) - len(embeds); hidden > 0 {
		content += fmt.Sprintf(", %d more in the web client", hidden)
	}
	return content, embeds
}
