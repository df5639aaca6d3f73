package model

import (
	"fmt"
	"teamcal/src-server/calendar"

	"github.com/bwmarrin/discordgo"
)

// Discord wants colors as 0xRRGGBB integers.
var embedColors = map[string]int{
	"red":    0xef4444,
	"blue":   0x3b82f6,
	"yellow": 0xeab308,
	"green":  0x22c55e,
}

// ToDiscordEmbed renders one event for the agenda and the daily digest.
func ToDiscordEmbed(e calendar.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       embedColors[e.Type.Color()],
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Date",
				Value:  fmt.Sprintf("<t:%d:D>", e.Date.Time().Unix()),
				Inline: true,
			},
			{
				Name:   "Type",
				Value:  e.Type.Label(),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: e.ID,
		},
	}
	if embed.Title == "" {
		embed.Title = "(untitled)"
	}
	if e.Time != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Time",
			Value:  e.Time,
			Inline: true,
		})
	}
	return embed
}
