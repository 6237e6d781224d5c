package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/teamcomm/relaybot/internal/adapter"
	"github.com/teamcomm/relaybot/internal/directory"
	"github.com/teamcomm/relaybot/internal/ingress"
	"github.com/teamcomm/relaybot/internal/interaction"
	"github.com/teamcomm/relaybot/internal/routing"
	"github.com/teamcomm/relaybot/internal/store"
)

const (
	actionRole    = "role"
	actionConfirm = "confirm"
	actionCancel  = "cancel"
)

const (
	noticeMuted       = "You have been muted and cannot send messages through this bot."
	noticeCancelled   = "Operation cancelled."
	noticeNothingToDo = "Nothing to do for that action."
)

// Router is the relay orchestrator. Every inbound event passes the mute
// gate, refreshes the identity map, and is then routed by the sender's roles:
// no role starts the anonymous-feedback workflow, one role routes directly,
// several roles start disambiguation.
type Router struct {
	dir          *directory.Directory
	table        *routing.Table
	mutes        *store.MuteRegistry
	identities   *store.IdentityStore
	interactions *interaction.Store
	forwarder    *Forwarder
	transport    adapter.Transport
	commands     *Commands
	oversight    string
}

func NewRouter(
	dir *directory.Directory,
	table *routing.Table,
	mutes *store.MuteRegistry,
	identities *store.IdentityStore,
	interactions *interaction.Store,
	forwarder *Forwarder,
	transport adapter.Transport,
	commands *Commands,
	oversightRole string,
) *Router {
	return &Router{
		dir:          dir,
		table:        table,
		mutes:        mutes,
		identities:   identities,
		interactions: interactions,
		forwarder:    forwarder,
		transport:    transport,
		commands:     commands,
		oversight:    oversightRole,
	}
}

// Handle processes one inbound event to completion.
func (r *Router) Handle(ctx context.Context, evt *ingress.Event) {
	switch {
	case evt.Kind == ingress.KindCallback:
		r.handleCallback(ctx, evt)
	case strings.HasPrefix(evt.Text, "/"):
		r.commands.Dispatch(ctx, evt)
	default:
		r.handleMessage(ctx, evt)
	}
}

func (r *Router) handleMessage(ctx context.Context, evt *ingress.Event) {
	if !evt.HasPayload() {
		return
	}

	slog.Info("Inbound message", "event_id", evt.ID, "sender", evt.SenderID)

	if r.mutes.IsMuted(evt.SenderID) {
		r.reply(ctx, evt.ChatID, noticeMuted)
		return
	}

	if evt.SenderHandle != "" {
		r.identities.RecordSighting(evt.SenderHandle, evt.SenderID)
	}

	roles := r.dir.RolesOf(evt.SenderID)
	switch {
	case len(roles) == 0:
		r.promptFeedbackConfirmation(ctx, evt)
	case len(roles) == 1:
		r.route(ctx, evt, roles[0])
	default:
		r.promptRoleSelection(ctx, evt, roles)
	}
}

func (r *Router) promptFeedbackConfirmation(ctx context.Context, evt *ingress.Event) {
	id := r.interactions.Create(interaction.KindFeedbackConfirmation, evt.SenderID, nil, evt)

	buttons := []adapter.Button{
		{Text: "✅ Send feedback", Token: actionConfirm + ":" + id},
		{Text: "❌ Cancel", Token: actionCancel + ":" + id},
	}
	err := r.transport.SendKeyboard(ctx, evt.ChatID,
		"You have no roles. Do you want to send this as *anonymous feedback* to all teams?",
		buttons)
	if err != nil {
		slog.Error("Failed to send feedback confirmation prompt", "error", err)
	}
}

func (r *Router) promptRoleSelection(ctx context.Context, evt *ingress.Event, roles []string) {
	id := r.interactions.Create(interaction.KindRoleSelection, evt.SenderID, roles, evt)

	buttons := make([]adapter.Button, 0, len(roles)+1)
	for _, role := range roles {
		buttons = append(buttons, adapter.Button{
			Text:  r.dir.DisplayName(role),
			Token: actionRole + ":" + id + ":" + role,
		})
	}
	buttons = append(buttons, adapter.Button{Text: "❌ Cancel", Token: actionCancel + ":" + id})

	err := r.transport.SendKeyboard(ctx, evt.ChatID,
		"You have multiple roles. Please choose which role you want to use to send this message:",
		buttons)
	if err != nil {
		slog.Error("Failed to send role selection prompt", "error", err)
	}
}

func (r *Router) handleCallback(ctx context.Context, evt *ingress.Event) {
	action, correlationID, role := parseToken(evt.CallbackToken)

	switch action {
	case actionCancel:
		if _, ok := r.interactions.Consume(correlationID); !ok {
			r.reply(ctx, evt.ChatID, noticeNothingToDo)
			return
		}
		r.reply(ctx, evt.ChatID, noticeCancelled)

	case actionConfirm:
		p, ok := r.interactions.Consume(correlationID)
		if !ok || p.Kind != interaction.KindFeedbackConfirmation {
			r.reply(ctx, evt.ChatID, noticeNothingToDo)
			return
		}
		r.sendAnonymousFeedback(ctx, p)

	case actionRole:
		p, ok := r.interactions.Consume(correlationID)
		if !ok || p.Kind != interaction.KindRoleSelection {
			r.reply(ctx, evt.ChatID, noticeNothingToDo)
			return
		}
		if !contains(p.Candidates, role) {
			slog.Warn("Role choice outside candidate set", "correlation_id", correlationID, "role", role)
			r.reply(ctx, evt.ChatID, noticeNothingToDo)
			return
		}
		r.route(ctx, p.Event, role)

	default:
		slog.Warn("Unknown callback token", "token", evt.CallbackToken)
		r.reply(ctx, evt.ChatID, noticeNothingToDo)
	}
}

// route expands the audience for a message sent as the given role and hands
// the delivery plan to the forwarder.
func (r *Router) route(ctx context.Context, evt *ingress.Event, role string) {
	text := evt.Text
	token := firstToken(text)

	// Handle-directed messages are an oversight-role privilege.
	if role == r.oversight && strings.HasPrefix(token, "-@") {
		r.routeToMember(ctx, evt, role, strings.TrimPrefix(token, "-@"))
		return
	}

	targetRoles, stripped := r.resolveTargets(role, token)
	if stripped {
		evt = strippedEvent(evt, token)
	}

	recipients := r.expand(targetRoles, evt.SenderID)
	header := forwardHeader(evt, evt.SenderName, r.dir.DisplayName(role))
	r.forwarder.Forward(ctx, recipients, header, evt)

	r.reply(ctx, evt.ChatID, sentAck(evt, r.dir.DisplayName(role)))
}

// resolveTargets picks the audience roles for a sender role and leading
// token. The second return reports whether the token was a recognized trigger
// and must be stripped from the forwarded text.
func (r *Router) resolveTargets(role, token string) ([]string, bool) {
	switch token {
	case "-t":
		return []string{r.oversight}, true
	case "-team":
		if role == r.oversight {
			return []string{r.oversight}, true
		}
		return []string{role, r.oversight}, true
	}

	if role == r.oversight {
		if targets, ok := r.table.TriggerTargets(token); ok {
			return targets, true
		}
	}

	return r.table.TargetsFor(role), false
}

func (r *Router) routeToMember(ctx context.Context, evt *ingress.Event, role, handle string) {
	memberID, ok := r.identities.Resolve(handle)
	if !ok {
		r.reply(ctx, evt.ChatID, fmt.Sprintf("⚠️ User `@%s` not found. They must interact with the bot first.", strings.ToLower(handle)))
		return
	}

	fwd := strippedEvent(evt, firstToken(evt.Text))
	header := forwardHeader(fwd, evt.SenderName, r.dir.DisplayName(role))
	r.forwarder.Forward(ctx, []int64{memberID}, header, fwd)

	r.reply(ctx, evt.ChatID, fmt.Sprintf("✅ *Your message has been sent to `@%s`.*", strings.ToLower(handle)))
}

func (r *Router) sendAnonymousFeedback(ctx context.Context, p *interaction.Pending) {
	evt := p.Event

	recipients := exclude(r.dir.AllMembers(), p.SenderID)
	r.forwarder.Forward(ctx, recipients, "🔄 *Anonymous feedback.*", evt)

	// The forwarded copies stay anonymous; the oversight team alone learns
	// who sent them.
	disclosure := fmt.Sprintf("ℹ️ *The anonymous feedback above was sent by %s (ID: `%d`).*", evt.SenderName, p.SenderID)
	for _, id := range exclude(r.dir.MembersOf(r.oversight), p.SenderID) {
		if err := r.transport.SendText(ctx, id, disclosure); err != nil {
			slog.Error("Failed to notify oversight team", "recipient", id, "error", err)
		}
	}

	r.reply(ctx, evt.ChatID, "✅ *Your anonymous feedback has been sent to all teams.*")
}

// expand resolves target roles into a deduplicated, sorted member id set
// with the sender removed.
func (r *Router) expand(targetRoles []string, senderID int64) []int64 {
	seen := make(map[int64]struct{})
	for _, role := range targetRoles {
		for _, id := range r.dir.MembersOf(role) {
			if id == senderID {
				continue
			}
			seen[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if err := r.transport.SendText(ctx, chatID, text); err != nil {
		slog.Error("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

func forwardHeader(evt *ingress.Event, senderName, roleName string) string {
	if evt.Document != nil {
		return fmt.Sprintf("🔄 *This document was sent by **%s (%s)**.*", senderName, roleName)
	}
	return fmt.Sprintf("🔄 *This message was sent by **%s (%s)**.*", senderName, roleName)
}

func sentAck(evt *ingress.Event, roleName string) string {
	if evt.Document != nil {
		return fmt.Sprintf("✅ *Your PDF `%s` has been sent from **%s** to the respective teams.*", evt.Document.FileName, roleName)
	}
	return fmt.Sprintf("✅ *Your message has been sent from **%s** to the respective teams.*", roleName)
}

// strippedEvent returns a copy of evt with the leading trigger token removed
// from the text.
func strippedEvent(evt *ingress.Event, token string) *ingress.Event {
	out := *evt
	out.Text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(evt.Text), token))
	return &out
}

func firstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseToken splits a callback token of the form action:correlation[:role].
func parseToken(token string) (action, correlationID, role string) {
	parts := strings.SplitN(token, ":", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	default:
		return token, "", ""
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func exclude(ids []int64, drop int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
