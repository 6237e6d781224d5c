package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/teamcomm/relaybot/internal/adapter"
	"github.com/teamcomm/relaybot/internal/directory"
	"github.com/teamcomm/relaybot/internal/ingress"
	"github.com/teamcomm/relaybot/internal/interaction"
	"github.com/teamcomm/relaybot/internal/store"
)

const noticeNotAuthorized = "🚫 You are not authorized to use this command."

const helpText = "📘 *Available Commands:*\n\n" +
	"/start - Initialize interaction with the bot.\n" +
	"/listusers - List all registered users (Tara Team only).\n" +
	"/help - Show this help message.\n" +
	"/refresh - Refresh your user information.\n" +
	"/cancel - Cancel the current operation.\n\n" +
	"*Message Sending Triggers:*\n" +
	"`-team` - Send a message to your own role and Tara Team.\n" +
	"`-t` - Send a message exclusively to the Tara Team.\n\n" +
	"*Specific Commands for Tara Team:*\n" +
	"`-@username` - Send a message to a specific user.\n" +
	"`-w` - Send a message to the Writer Team.\n" +
	"`-e` or `-c` - Send a message to the Editor Team.\n" +
	"`-mcq` - Send a message to the MCQs Team.\n" +
	"`-d` - Send a message to the Digital Writers.\n" +
	"`-de` - Send a message to the Design Team.\n" +
	"`-mf` - Send a message to the Mind Map & Form Creation Team.\n\n" +
	"*Admin Commands (Tara Team only):*\n" +
	"/mute [user_id] - Mute yourself or another user.\n" +
	"/muteid <user_id> - Mute a specific user by their ID.\n" +
	"/unmuteid <user_id> - Unmute a specific user by their ID.\n" +
	"/listmuted - List all currently muted users.\n\n" +
	"📌 *Notes:*\n" +
	"- Only Tara Team members can use side commands and `-@username` command.\n" +
	"- Use `/cancel` to cancel any ongoing operation.\n" +
	"- If you have *no role*, you can send anonymous feedback to all teams."

// Commands is the thin administrative surface over the transport: each
// command is a direct call into the registries with no routing logic.
type Commands struct {
	dir          *directory.Directory
	mutes        *store.MuteRegistry
	identities   *store.IdentityStore
	interactions *interaction.Store
	transport    adapter.Transport
	oversight    string
	adminRoles   []string
}

func NewCommands(
	dir *directory.Directory,
	mutes *store.MuteRegistry,
	identities *store.IdentityStore,
	interactions *interaction.Store,
	transport adapter.Transport,
	oversightRole string,
	adminRoles []string,
) *Commands {
	return &Commands{
		dir:          dir,
		mutes:        mutes,
		identities:   identities,
		interactions: interactions,
		transport:    transport,
		oversight:    oversightRole,
		adminRoles:   adminRoles,
	}
}

// Dispatch parses and executes one slash command event.
func (c *Commands) Dispatch(ctx context.Context, evt *ingress.Event) {
	args, err := shlex.Split(evt.Text)
	if err != nil || len(args) == 0 {
		c.reply(ctx, evt.ChatID, "⚠️ Could not parse that command.")
		return
	}

	name := strings.TrimPrefix(args[0], "/")
	// Commands in group chats arrive as /cmd@botname.
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	args = args[1:]

	slog.Info("Command received", "command", name, "sender", evt.SenderID)

	switch name {
	case "start":
		c.start(ctx, evt)
	case "help":
		c.reply(ctx, evt.ChatID, helpText)
	case "refresh":
		c.refresh(ctx, evt)
	case "cancel":
		c.cancel(ctx, evt)
	case "mute":
		c.mute(ctx, evt, args)
	case "muteid":
		c.muteByID(ctx, evt, args)
	case "unmuteid":
		c.unmuteByID(ctx, evt, args)
	case "listmuted":
		c.listMuted(ctx, evt)
	case "listusers":
		c.listUsers(ctx, evt)
	default:
		c.reply(ctx, evt.ChatID, "⚠️ Unknown command. Use /help to see available commands.")
	}
}

func (c *Commands) start(ctx context.Context, evt *ingress.Event) {
	if evt.SenderHandle == "" {
		c.reply(ctx, evt.ChatID, "Please set a Telegram username in your profile to use specific commands like `-@username`.")
		return
	}

	c.identities.RecordSighting(evt.SenderHandle, evt.SenderID)
	c.reply(ctx, evt.ChatID, fmt.Sprintf(
		"Hello, %s! Welcome to the Team Communication Bot.\n\nFeel free to send messages using the available commands.",
		evt.SenderName))
}

func (c *Commands) refresh(ctx context.Context, evt *ingress.Event) {
	if evt.SenderHandle == "" {
		c.reply(ctx, evt.ChatID, "Please set a Telegram username in your profile so your information can be registered.")
		return
	}

	c.identities.RecordSighting(evt.SenderHandle, evt.SenderID)
	c.reply(ctx, evt.ChatID, "✅ Your information has been refreshed.")
}

func (c *Commands) cancel(ctx context.Context, evt *ingress.Event) {
	if c.interactions.CancelBySender(evt.SenderID) {
		c.reply(ctx, evt.ChatID, noticeCancelled)
		return
	}
	c.reply(ctx, evt.ChatID, "No active operation to cancel.")
}

func (c *Commands) mute(ctx context.Context, evt *ingress.Event, args []string) {
	if !c.isAdmin(evt.SenderID) {
		c.reply(ctx, evt.ChatID, noticeNotAuthorized)
		return
	}

	target := evt.SenderID
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			c.reply(ctx, evt.ChatID, "⚠️ Usage: `/mute [user_id]`")
			return
		}
		target = id
	}
	c.applyMute(ctx, evt.ChatID, target)
}

func (c *Commands) muteByID(ctx context.Context, evt *ingress.Event, args []string) {
	if !c.isAdmin(evt.SenderID) {
		c.reply(ctx, evt.ChatID, noticeNotAuthorized)
		return
	}

	id, ok := parseIDArg(args)
	if !ok {
		c.reply(ctx, evt.ChatID, "⚠️ Usage: `/muteid <user_id>`")
		return
	}
	c.applyMute(ctx, evt.ChatID, id)
}

func (c *Commands) applyMute(ctx context.Context, chatID, target int64) {
	if c.mutes.Mute(target) {
		c.reply(ctx, chatID, fmt.Sprintf("✅ User `%d` has been muted.", target))
		return
	}
	c.reply(ctx, chatID, fmt.Sprintf("ℹ️ User `%d` is already muted.", target))
}

func (c *Commands) unmuteByID(ctx context.Context, evt *ingress.Event, args []string) {
	if !c.isAdmin(evt.SenderID) {
		c.reply(ctx, evt.ChatID, noticeNotAuthorized)
		return
	}

	id, ok := parseIDArg(args)
	if !ok {
		c.reply(ctx, evt.ChatID, "⚠️ Usage: `/unmuteid <user_id>`")
		return
	}

	if c.mutes.Unmute(id) {
		c.reply(ctx, evt.ChatID, fmt.Sprintf("✅ User `%d` has been unmuted.", id))
		return
	}
	c.reply(ctx, evt.ChatID, fmt.Sprintf("ℹ️ User `%d` is not muted.", id))
}

func (c *Commands) listMuted(ctx context.Context, evt *ingress.Event) {
	if !c.isAdmin(evt.SenderID) {
		c.reply(ctx, evt.ChatID, noticeNotAuthorized)
		return
	}

	ids := c.mutes.List()
	if len(ids) == 0 {
		c.reply(ctx, evt.ChatID, "No muted users.")
		return
	}

	var b strings.Builder
	b.WriteString("🔇 *Muted users:*\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "- `%d`\n", id)
	}
	c.reply(ctx, evt.ChatID, b.String())
}

func (c *Commands) listUsers(ctx context.Context, evt *ingress.Event) {
	if !c.dir.HasRole(evt.SenderID, c.oversight) {
		c.reply(ctx, evt.ChatID, noticeNotAuthorized)
		return
	}

	users := c.identities.List()
	if len(users) == 0 {
		c.reply(ctx, evt.ChatID, "No registered users.")
		return
	}

	handles := make([]string, 0, len(users))
	for handle := range users {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	var b strings.Builder
	b.WriteString("👥 *Registered users:*\n")
	for _, handle := range handles {
		fmt.Fprintf(&b, "- `@%s` → `%d`\n", handle, users[handle])
	}
	c.reply(ctx, evt.ChatID, b.String())
}

func (c *Commands) isAdmin(memberID int64) bool {
	for _, role := range c.adminRoles {
		if c.dir.HasRole(memberID, role) {
			return true
		}
	}
	return false
}

func (c *Commands) reply(ctx context.Context, chatID int64, text string) {
	if err := c.transport.SendText(ctx, chatID, text); err != nil {
		slog.Error("Failed to send command reply", "chat_id", chatID, "error", err)
	}
}

func parseIDArg(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
