package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
)

type mockMessageRepo struct {
	recent []*repo.ChannelMessage
	botID  string
}

func (m *mockMessageRepo) Send(ctx context.Context, channelID, content string) (string, error) {
	return "msg-1", nil
}

func (m *mockMessageRepo) Edit(ctx context.Context, channelID, messageID, content string) error {
	return nil
}

func (m *mockMessageRepo) Delete(ctx context.Context, channelID, messageID string) error {
	return nil
}

func (m *mockMessageRepo) Recent(ctx context.Context, channelID string, limit int) ([]*repo.ChannelMessage, error) {
	return m.recent, nil
}

func (m *mockMessageRepo) BotUserID() string { return m.botID }

type roleChange struct {
	GuildID string
	UserID  string
	RoleID  string
}

type mockRoleRepo struct {
	granted []roleChange
	revoked []roleChange
	err     error
}

func (m *mockRoleRepo) Grant(ctx context.Context, guildID, userID, roleID string) error {
	if m.err != nil {
		return m.err
	}
	m.granted = append(m.granted, roleChange{guildID, userID, roleID})
	return nil
}

func (m *mockRoleRepo) Revoke(ctx context.Context, guildID, userID, roleID string) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, roleChange{guildID, userID, roleID})
	return nil
}

func buttonIDs(rows []discordgo.MessageComponent) []string {
	var ids []string
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if b, ok := c.(discordgo.Button); ok {
				ids = append(ids, b.CustomID)
			}
		}
	}
	return ids
}

func TestCategoryRows_StartAndCancelPerObject(t *testing.T) {
	objects := domain.ObjectsInCategory("Снабжение")
	if len(objects) == 0 {
		t.Fatal("category should not be empty")
	}

	rows := categoryRows(objects)
	ids := buttonIDs(rows)
	for _, obj := range objects {
		var haveStart, haveCancel bool
		for _, id := range ids {
			if id == startCustomIDPrefix+obj.Key {
				haveStart = true
			}
			if id == cancelCustomIDPrefix+obj.Key {
				haveCancel = true
			}
		}
		if !haveStart {
			t.Errorf("missing start button for %s", obj.Key)
		}
		if !haveCancel {
			t.Errorf("missing cancel button for %s", obj.Key)
		}
	}
	if len(ids) != 2*len(objects) {
		t.Errorf("expected %d buttons, got %d", 2*len(objects), len(ids))
	}
}

func TestCategoryRows_RowLimit(t *testing.T) {
	objects := domain.ObjectsInCategory("Снабжение") // five objects
	for _, row := range categoryRows(objects) {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("unexpected component type %T", row)
		}
		if len(ar.Components) > 5 {
			t.Errorf("row exceeds the five-button limit: %d", len(ar.Components))
		}
	}
}

func TestCategoryRows_CancelStyleDiffers(t *testing.T) {
	rows := categoryRows(domain.ObjectsInCategory("Техника"))
	for _, row := range rows {
		for _, c := range row.(discordgo.ActionsRow).Components {
			b := c.(discordgo.Button)
			if strings.HasPrefix(b.CustomID, cancelCustomIDPrefix) && b.Style != discordgo.DangerButton {
				t.Errorf("cancel button %s should be danger-styled", b.CustomID)
			}
			if strings.HasPrefix(b.CustomID, startCustomIDPrefix) && b.Style != discordgo.PrimaryButton {
				t.Errorf("start button %s should be primary-styled", b.CustomID)
			}
		}
	}
}

func TestPublishControlPanel_SkipsWhenAlreadyPresent(t *testing.T) {
	msgs := &mockMessageRepo{
		botID: "bot-1",
		recent: []*repo.ChannelMessage{
			{ID: "m1", AuthorID: "user-1", Content: "какое-то сообщение"},
			{ID: "m2", AuthorID: "bot-1", Content: "**Снабжение**\n" + controlPanelMarker},
		},
	}
	// the nil session proves sending is never reached
	s := NewDiscordServer(nil, nil, nil, msgs, nil, Config{ControlChannelID: "ctrl"})

	if err := s.publishControlPanel(context.Background()); err != nil {
		t.Fatalf("publish should skip cleanly: %v", err)
	}
}

func TestPublishSubscriptionPanel_SkipsWhenAlreadyPresent(t *testing.T) {
	msgs := &mockMessageRepo{
		botID: "bot-1",
		recent: []*repo.ChannelMessage{
			{ID: "m1", AuthorID: "bot-1", Content: "🔔 **" + subscriptionPanelMarker + "**"},
		},
	}
	s := NewDiscordServer(nil, nil, nil, msgs, nil, Config{
		SubscriptionChannelID: "subs",
		SubscriptionRoleID:    "role-1",
	})

	if err := s.publishSubscriptionPanel(context.Background()); err != nil {
		t.Fatalf("publish should skip cleanly: %v", err)
	}
}

func TestHasPanel_IgnoresForeignAuthorsAndOtherContent(t *testing.T) {
	msgs := &mockMessageRepo{
		botID: "bot-1",
		recent: []*repo.ChannelMessage{
			{ID: "m1", AuthorID: "user-1", Content: controlPanelMarker}, // not ours
			{ID: "m2", AuthorID: "bot-1", Content: "поставка запущена"}, // ours, not a panel
		},
	}
	s := NewDiscordServer(nil, nil, nil, msgs, nil, Config{ControlChannelID: "ctrl"})

	found, err := s.hasPanel(context.Background(), "ctrl", controlPanelMarker)
	if err != nil {
		t.Fatalf("hasPanel failed: %v", err)
	}
	if found {
		t.Error("panel should not be detected from foreign or unrelated messages")
	}
}

func TestApplySubscription_GrantAndRevoke(t *testing.T) {
	roles := &mockRoleRepo{}
	s := NewDiscordServer(nil, nil, nil, &mockMessageRepo{}, roles, Config{SubscriptionRoleID: "role-1"})
	ctx := context.Background()

	reply := s.applySubscription(ctx, "guild-1", "user-1", true)
	if !strings.Contains(reply, "🔔") {
		t.Errorf("subscribe reply = %q", reply)
	}
	if len(roles.granted) != 1 || roles.granted[0] != (roleChange{"guild-1", "user-1", "role-1"}) {
		t.Fatalf("unexpected grants: %v", roles.granted)
	}

	reply = s.applySubscription(ctx, "guild-1", "user-1", false)
	if !strings.Contains(reply, "🔕") {
		t.Errorf("unsubscribe reply = %q", reply)
	}
	if len(roles.revoked) != 1 || roles.revoked[0] != (roleChange{"guild-1", "user-1", "role-1"}) {
		t.Fatalf("unexpected revokes: %v", roles.revoked)
	}
}

func TestApplySubscription_ErrorReply(t *testing.T) {
	roles := &mockRoleRepo{err: errors.New("api down")}
	s := NewDiscordServer(nil, nil, nil, &mockMessageRepo{}, roles, Config{SubscriptionRoleID: "role-1"})

	reply := s.applySubscription(context.Background(), "guild-1", "user-1", true)
	if !strings.Contains(reply, "❌") {
		t.Errorf("failed grant should produce an error reply, got %q", reply)
	}
	if len(roles.granted) != 0 {
		t.Errorf("no grant should be recorded on failure")
	}
}
