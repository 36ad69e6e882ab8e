// Package webhook receives LINE Messaging API callbacks and routes
// text commands to the ledger service.
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/tzuhanw/gearbot/internal/command"
	"github.com/tzuhanw/gearbot/internal/service"
)

// Handler verifies and handles LINE webhook callbacks.
type Handler struct {
	bot           *linebot.Client
	ledger        *service.LedgerService
	allowedGroups map[string]struct{}
}

// New creates a webhook Handler. allowedGroups restricts handling to
// the listed group IDs; an empty list allows everything.
func New(bot *linebot.Client, ledger *service.LedgerService, allowedGroups []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedGroups))
	for _, g := range allowedGroups {
		if g != "" {
			allowed[g] = struct{}{}
		}
	}
	return &Handler{bot: bot, ledger: ledger, allowedGroups: allowed}
}

// ServeHTTP implements the webhook endpoint. GET answers OK so the
// endpoint doubles as a liveness probe; POST bodies are signature-
// verified by the SDK before any event is processed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Write([]byte("OK"))
		return
	}

	events, err := h.bot.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			slog.Warn("webhook signature rejected", "remote_addr", r.RemoteAddr)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		slog.Error("webhook parse failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Acknowledge before doing per-event work; LINE retries slow
	// webhooks and retries would double-apply borrow commands.
	w.WriteHeader(http.StatusOK)

	for _, event := range events {
		h.handleEvent(r.Context(), event)
	}
}

func (h *Handler) handleEvent(ctx context.Context, event *linebot.Event) {
	if event.Type != linebot.EventTypeMessage {
		return
	}
	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		return
	}

	groupID := ""
	userID := "unknown"
	if event.Source != nil {
		groupID = event.Source.GroupID
		if event.Source.UserID != "" {
			userID = event.Source.UserID
		}
	}
	if !h.groupAllowed(groupID) {
		return
	}

	cmd := command.Parse(command.Tokenize(strings.TrimSpace(message.Text)))
	if cmd.Kind == command.Unrecognized {
		// Not for us. Groups are full of ordinary chatter; silence
		// here is the contract, not an error.
		return
	}

	actor := service.Actor{GroupID: groupID, UserID: userID, DisplayName: userID}
	if cmd.Kind == command.Borrow || cmd.Kind == command.Return {
		// Only movements record a name, so only they pay for the
		// profile lookup.
		actor.DisplayName = h.displayName(groupID, userID)
	}

	reply, err := h.ledger.Execute(ctx, cmd, actor)
	if err != nil {
		// Storage fault: log it, tell the user nothing specific.
		slog.Error("command failed", "command", cmd.Kind, "user_id", userID, "error", err)
		return
	}
	if reply == "" {
		return
	}

	if _, err := h.bot.ReplyMessage(event.ReplyToken, linebot.NewTextMessage(reply)).Do(); err != nil {
		slog.Error("reply failed", "command", cmd.Kind, "error", err)
	}
}

// groupAllowed applies the allow-list. When the list is set, messages
// from outside any listed group (including direct messages, which have
// no group ID) are dropped.
func (h *Handler) groupAllowed(groupID string) bool {
	if len(h.allowedGroups) == 0 {
		return true
	}
	_, ok := h.allowedGroups[groupID]
	return ok
}

// displayName resolves the actor's profile name, falling back to the
// raw user ID when the lookup fails (e.g. the user never added the bot
// as a friend).
func (h *Handler) displayName(groupID, userID string) string {
	var name string
	var err error
	if groupID != "" {
		var prof *linebot.UserProfileResponse
		prof, err = h.bot.GetGroupMemberProfile(groupID, userID).Do()
		if prof != nil {
			name = prof.DisplayName
		}
	} else {
		var prof *linebot.UserProfileResponse
		prof, err = h.bot.GetProfile(userID).Do()
		if prof != nil {
			name = prof.DisplayName
		}
	}
	if err != nil || name == "" {
		slog.Debug("profile lookup failed", "user_id", userID, "error", err)
		return userID
	}
	return name
}
