package handlers

import (
	"github.com/sentinelbot/sentinel-backend/internal/chatbot"
	"github.com/sentinelbot/sentinel-backend/internal/moderation"
	"github.com/sentinelbot/sentinel-backend/internal/platform"
)

// Package-level collaborators, wired once from main before the router starts.
var (
	pipeline       *moderation.Pipeline
	strikes        *moderation.StrikeTracker
	bot            *chatbot.ContextManager
	platformClient platform.Client
	gatewayToken   string
	botUserID      string
)

// Init wires the handlers to the moderation core. Must be called before any
// route is served.
func Init(p *moderation.Pipeline, tracker *moderation.StrikeTracker, cm *chatbot.ContextManager, pc platform.Client, gwToken, botID string) {
	pipeline = p
	strikes = tracker
	bot = cm
	platformClient = pc
	gatewayToken = gwToken
	botUserID = botID
}
