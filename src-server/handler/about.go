// Package handler holds the calendar bot's slash commands:
//
//   - /login hands out a one-time key for the web client, creating the
//     channel's calendar on first use
//   - /agenda lists the channel's events for a day
//   - /ping reports uptime and latency
//
// Each command has an exported func that registers its definition and
// handler on the AppState, and a private func that handles the interaction.
// Handlers only return errors for backend failures; bad user input gets a
// reply instead.
package handler
