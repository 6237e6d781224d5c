package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcomm/relaybot/internal/config"
	"github.com/teamcomm/relaybot/internal/ingress"
)

func command(senderID int64, text string) *ingress.Event {
	evt := ingress.NewEvent("test", ingress.KindMessage)
	evt.SenderID = senderID
	evt.ChatID = senderID
	evt.SenderName = "Sender"
	evt.Text = text
	return evt
}

func lastReply(t *testing.T, fx *routerFixture, chatID int64) string {
	t.Helper()
	texts := fx.transport.TextsFor(chatID)
	require.NotEmpty(t, texts, "no reply for chat %d", chatID)
	return texts[len(texts)-1]
}

func TestCommands_StartRequiresUsername(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(1, "/start"))
	assert.Contains(t, lastReply(t, fx, 1), "set a Telegram username")

	evt := command(1, "/start")
	evt.SenderHandle = "bob"
	fx.router.Handle(context.Background(), evt)
	assert.Contains(t, lastReply(t, fx, 1), "Welcome")

	id, ok := fx.identities.Resolve("bob")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestCommands_Help(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(1, "/help"))

	reply := lastReply(t, fx, 1)
	assert.Contains(t, reply, "Available Commands")
	assert.Contains(t, reply, "/listusers")
	assert.Contains(t, reply, "`-team`")
}

func TestCommands_GroupChatSuffixStripped(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(1, "/help@relaybot"))
	assert.Contains(t, lastReply(t, fx, 1), "Available Commands")
}

func TestCommands_Refresh(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	evt := command(2, "/refresh")
	evt.SenderHandle = "Carol"
	fx.router.Handle(context.Background(), evt)

	assert.Contains(t, lastReply(t, fx, 2), "refreshed")

	id, ok := fx.identities.Resolve("carol")
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestCommands_CancelClearsPendingInteraction(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	// A no-role message leaves a pending confirmation behind.
	fx.router.Handle(context.Background(), message(999, "feedback"))
	require.Equal(t, 1, fx.interactions.Len())

	fx.router.Handle(context.Background(), command(999, "/cancel"))
	assert.Equal(t, noticeCancelled, lastReply(t, fx, 999))
	assert.Equal(t, 0, fx.interactions.Len())

	fx.router.Handle(context.Background(), command(999, "/cancel"))
	assert.Contains(t, lastReply(t, fx, 999), "No active operation")
}

func TestCommands_MuteRequiresAdmin(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(1, "/mute 3"))
	assert.Equal(t, noticeNotAuthorized, lastReply(t, fx, 1))
	assert.False(t, fx.mutes.IsMuted(3))
}

func TestCommands_MuteUnmuteRoundTrip(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(5, "/mute 3"))
	assert.Contains(t, lastReply(t, fx, 5), "has been muted")
	assert.True(t, fx.mutes.IsMuted(3))

	fx.router.Handle(context.Background(), command(5, "/muteid 3"))
	assert.Contains(t, lastReply(t, fx, 5), "already muted")

	fx.router.Handle(context.Background(), command(5, "/unmuteid 3"))
	assert.Contains(t, lastReply(t, fx, 5), "has been unmuted")
	assert.False(t, fx.mutes.IsMuted(3))

	fx.router.Handle(context.Background(), command(5, "/unmuteid 3"))
	assert.Contains(t, lastReply(t, fx, 5), "not muted")
}

func TestCommands_MuteWithoutArgMutesSelf(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(5, "/mute"))
	assert.True(t, fx.mutes.IsMuted(5))
}

func TestCommands_MuteIDUsage(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(5, "/muteid"))
	assert.Contains(t, lastReply(t, fx, 5), "Usage")

	fx.router.Handle(context.Background(), command(5, "/muteid notanumber"))
	assert.Contains(t, lastReply(t, fx, 5), "Usage")
}

func TestCommands_ListMuted(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(5, "/listmuted"))
	assert.Contains(t, lastReply(t, fx, 5), "No muted users")

	fx.mutes.Mute(3)
	fx.mutes.Mute(1)

	fx.router.Handle(context.Background(), command(5, "/listmuted"))
	reply := lastReply(t, fx, 5)
	assert.Contains(t, reply, "`1`")
	assert.Contains(t, reply, "`3`")
}

func TestCommands_ListUsersOversightOnly(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())
	fx.identities.RecordSighting("alice", 42)
	fx.identities.RecordSighting("bob", 7)

	fx.router.Handle(context.Background(), command(1, "/listusers"))
	assert.Equal(t, noticeNotAuthorized, lastReply(t, fx, 1))

	fx.router.Handle(context.Background(), command(5, "/listusers"))
	reply := lastReply(t, fx, 5)
	assert.Contains(t, reply, "@alice")
	assert.Contains(t, reply, "`42`")
	assert.Contains(t, reply, "@bob")
}

func TestCommands_AdminRoleBeyondOversight(t *testing.T) {
	roles := scenarioRoles()
	roles["king_team"] = config.RoleConfig{DisplayName: "Admin Team", Members: []int64{8}}
	fx := newRouterFixture(t, roles)

	// king_team members can administer mutes but not list users.
	fx.router.Handle(context.Background(), command(8, "/muteid 3"))
	assert.True(t, fx.mutes.IsMuted(3))

	fx.router.Handle(context.Background(), command(8, "/listusers"))
	assert.Equal(t, noticeNotAuthorized, lastReply(t, fx, 8))
}

func TestCommands_UnknownCommand(t *testing.T) {
	fx := newRouterFixture(t, scenarioRoles())

	fx.router.Handle(context.Background(), command(1, "/bogus"))
	assert.Contains(t, lastReply(t, fx, 1), "Unknown command")
}
