package dispatch_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestSubmitRejectsInvalidMessages(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	carol := h.addUser(t, "carol", "Carol", models.RoleUser)

	general := h.channels.CreateChannel("general", alice.ID, alice.ID, bob.ID)
	secret := h.channels.CreateChannel("secret", carol.ID, carol.ID)
	other := h.channels.CreateChannel("other", alice.ID, alice.ID)

	inOther := h.messages.Insert(&models.Message{SenderID: alice.ID, ChannelID: uintPtr(other), Type: models.TextMessage, Content: "elsewhere"})
	revoked := h.messages.Insert(&models.Message{SenderID: alice.ID, ChannelID: uintPtr(general), Type: models.TextMessage, Content: "gone", IsRevoked: true})
	private := h.messages.Insert(&models.Message{SenderID: bob.ID, ToUserID: carol.ID, Type: models.TextMessage, Content: "psst"})

	tests := []struct {
		name    string
		in      dispatch.SubmitInput
		wantErr *dispatch.Error
	}{
		{"unknown type", dispatch.SubmitInput{Type: "video", Content: "hi"}, dispatch.ErrInvalidMessage},
		{"blank content", dispatch.SubmitInput{Type: models.TextMessage, Content: "   "}, dispatch.ErrInvalidMessage},
		{"too long", dispatch.SubmitInput{Type: models.TextMessage, Content: strings.Repeat("x", 51)}, dispatch.ErrMessageTooLong},
		{"negative target", dispatch.SubmitInput{To: -1, Type: models.TextMessage, Content: "hi"}, dispatch.ErrInvalidTarget},
		{"file without url", dispatch.SubmitInput{Type: models.FileMessage, Content: `{"name":"a.pdf"}`}, dispatch.ErrInvalidFilePayload},
		{"file not json", dispatch.SubmitInput{Type: models.FileMessage, Content: "a.pdf"}, dispatch.ErrInvalidFilePayload},
		{"channel and peer", dispatch.SubmitInput{To: int64(bob.ID), ChannelID: general, Type: models.TextMessage, Content: "hi"}, dispatch.ErrChannelTargetConflict},
		{"not a member", dispatch.SubmitInput{ChannelID: secret, Type: models.TextMessage, Content: "hi"}, dispatch.ErrNotChannelMember},
		{"unknown channel", dispatch.SubmitInput{ChannelID: 404, Type: models.TextMessage, Content: "hi"}, dispatch.ErrNotChannelMember},
		{"self private", dispatch.SubmitInput{To: int64(alice.ID), Type: models.TextMessage, Content: "hi"}, dispatch.ErrSelfPrivateMessage},
		{"reply to missing", dispatch.SubmitInput{ChannelID: general, Type: models.TextMessage, Content: "re", ReplyToMessageID: 999}, dispatch.ErrInvalidReply},
		{"reply to revoked", dispatch.SubmitInput{ChannelID: general, Type: models.TextMessage, Content: "re", ReplyToMessageID: revoked.ID}, dispatch.ErrInvalidReply},
		{"reply across channels", dispatch.SubmitInput{ChannelID: general, Type: models.TextMessage, Content: "re", ReplyToMessageID: inOther.ID}, dispatch.ErrInvalidReply},
		{"reply to another pair", dispatch.SubmitInput{To: int64(bob.ID), Type: models.TextMessage, Content: "re", ReplyToMessageID: private.ID}, dispatch.ErrInvalidReply},
		{"group reply to channel", dispatch.SubmitInput{Type: models.TextMessage, Content: "re", ReplyToMessageID: inOther.ID}, dispatch.ErrInvalidReply},
	}

	aliceConn := h.connect(alice)
	bobConn := h.connect(bob)
	resetAll(aliceConn, bobConn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := h.engine.Submit(alice, aliceConn, tt.in)
			requireDispatchError(t, err, tt.wantErr)
			require.Nil(t, msg)
		})
	}

	require.Equal(t, 0, aliceConn.Count(dispatch.EventChatMessage))
	require.Equal(t, 0, aliceConn.Count(dispatch.EventChatError))
	require.Equal(t, 0, bobConn.Count(dispatch.EventChatMessage))
	maxID, err := h.messages.MaxIDIn(models.GroupScope())
	require.NoError(t, err)
	require.Zero(t, maxID)
}

func TestSubmitChannelReachesOnlyCurrentMembers(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	carol := h.addUser(t, "carol", "Carol", models.RoleUser)
	dave := h.addUser(t, "dave", "Dave", models.RoleUser)
	channelID := h.channels.CreateChannel("team", alice.ID, alice.ID, bob.ID)

	conns := map[uint]*testutil.FakeConn{
		alice.ID: h.connect(alice),
		bob.ID:   h.connect(bob),
		carol.ID: h.connect(carol),
		dave.ID:  h.connect(dave),
	}
	for _, c := range conns {
		c.Reset()
	}

	msg, err := h.engine.Submit(alice, conns[alice.ID], dispatch.SubmitInput{ChannelID: channelID, Type: models.TextMessage, Content: "standup"})
	require.NoError(t, err)
	require.Equal(t, channelID, *msg.ChannelID)
	require.Zero(t, msg.ToUserID)

	require.Equal(t, 1, conns[alice.ID].Count(dispatch.EventChatMessage))
	require.Equal(t, 1, conns[bob.ID].Count(dispatch.EventChatMessage))
	require.Equal(t, 0, conns[carol.ID].Count(dispatch.EventChatMessage))
	require.Equal(t, 0, conns[dave.ID].Count(dispatch.EventChatMessage))

	delivered := conns[bob.ID].Payloads(dispatch.EventChatMessage)[0].(models.MessageResponse)
	require.Equal(t, msg.ID, delivered.ID)
	require.Equal(t, "Alice", delivered.FromNickname)

	// Membership is looked up on every send.
	require.NoError(t, h.channels.ReplaceMembers(channelID, []uint{alice.ID, carol.ID}, alice.ID))
	_, err = h.engine.Submit(alice, conns[alice.ID], dispatch.SubmitInput{ChannelID: channelID, Type: models.TextMessage, Content: "reshuffle"})
	require.NoError(t, err)
	require.Equal(t, 1, conns[bob.ID].Count(dispatch.EventChatMessage))
	require.Equal(t, 1, conns[carol.ID].Count(dispatch.EventChatMessage))

	_, err = h.engine.Submit(bob, conns[bob.ID], dispatch.SubmitInput{ChannelID: channelID, Type: models.TextMessage, Content: "still here?"})
	requireDispatchError(t, err, dispatch.ErrNotChannelMember)

	require.Equal(t, []string{"channel:1", "channel:1"}, h.history.Keys())
	require.Equal(t, float64(2), metricValue(t, h, "lanchat_messages_dispatched_total"))
}

func TestSubmitGroupReachesEveryone(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	carol := h.addUser(t, "carol", "Carol", models.RoleUser)

	aliceConn, bobConn, carolConn := h.connect(alice), h.connect(bob), h.connect(carol)
	resetAll(aliceConn, bobConn, carolConn)

	msg, err := h.engine.Submit(alice, aliceConn, dispatch.SubmitInput{Type: models.TextMessage, Content: "hello all"})
	require.NoError(t, err)
	require.Nil(t, msg.ChannelID)
	require.Zero(t, msg.ToUserID)

	for _, c := range []*testutil.FakeConn{aliceConn, bobConn, carolConn} {
		require.Equal(t, 1, c.Count(dispatch.EventChatMessage), c.ID())
	}
}

func TestSubmitPrivateReachesOnlyThePair(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	carol := h.addUser(t, "carol", "Carol", models.RoleUser)

	aliceConn, bobConn, carolConn := h.connect(alice), h.connect(bob), h.connect(carol)
	resetAll(aliceConn, bobConn, carolConn)

	msg, err := h.engine.Submit(alice, aliceConn, dispatch.SubmitInput{To: int64(bob.ID), Type: models.TextMessage, Content: "just us"})
	require.NoError(t, err)
	require.Equal(t, bob.ID, msg.ToUserID)

	require.Equal(t, 1, aliceConn.Count(dispatch.EventChatMessage))
	require.Equal(t, 1, bobConn.Count(dispatch.EventChatMessage))
	require.Equal(t, 0, carolConn.Count(dispatch.EventChatMessage))

	// Offline peers just miss the push; the message is still stored.
	require.True(t, h.engine.Leave(bob.ID, bobConn.ID()))
	msg, err = h.engine.Submit(alice, aliceConn, dispatch.SubmitInput{To: int64(bob.ID), Type: models.TextMessage, Content: "you there?"})
	require.NoError(t, err)
	stored, err := h.messages.FindByID(msg.ID)
	require.NoError(t, err)
	require.Equal(t, "you there?", stored.Content)
}

func TestSubmitReplyWithinSameConversation(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	channelID := h.channels.CreateChannel("team", alice.ID, alice.ID, bob.ID)

	first, err := h.engine.Submit(bob, nil, dispatch.SubmitInput{ChannelID: channelID, Type: models.TextMessage, Content: "question"})
	require.NoError(t, err)

	reply, err := h.engine.Submit(alice, nil, dispatch.SubmitInput{ChannelID: channelID, Type: models.TextMessage, Content: "answer", ReplyToMessageID: first.ID})
	require.NoError(t, err)
	require.Equal(t, first.ID, *reply.ReplyToMessageID)

	dm, err := h.engine.Submit(bob, nil, dispatch.SubmitInput{To: int64(alice.ID), Type: models.TextMessage, Content: "ping"})
	require.NoError(t, err)
	// The pair is the same seen from either side.
	_, err = h.engine.Submit(alice, nil, dispatch.SubmitInput{To: int64(bob.ID), Type: models.TextMessage, Content: "pong", ReplyToMessageID: dm.ID})
	require.NoError(t, err)
}

func TestSubmitAcceptsFileMessage(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)

	msg, err := h.engine.Submit(alice, nil, dispatch.SubmitInput{
		Type:    models.FileMessage,
		Content: `{"name":"report.pdf","url":"/uploads/report.pdf","size":1024}`,
	})
	require.NoError(t, err)
	require.Equal(t, models.FileMessage, msg.Type)
}

func TestSubmitPersistenceFailureIsNotBroadcast(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	aliceConn, bobConn := h.connect(alice), h.connect(bob)
	resetAll(aliceConn, bobConn)

	h.messages.CreateErr = errors.New("connection reset by peer")

	msg, err := h.engine.Submit(alice, aliceConn, dispatch.SubmitInput{Type: models.TextMessage, Content: "lost"})
	requireDispatchError(t, err, dispatch.ErrPersistence)
	require.Nil(t, msg)
	require.NotContains(t, dispatch.PublicMessage(err), "connection reset")

	errs := aliceConn.Payloads(dispatch.EventChatError)
	require.Len(t, errs, 1)
	require.Equal(t, dispatch.ErrPersistence.Code, errs[0].(dispatch.ErrorEvent).Code)

	require.Equal(t, 0, aliceConn.Count(dispatch.EventChatMessage))
	require.Equal(t, 0, bobConn.Count(dispatch.EventChatMessage))
	require.Equal(t, 0, bobConn.Count(dispatch.EventChatError))
	require.Empty(t, h.history.Keys())
}

func TestTypingRelay(t *testing.T) {
	h := newHarness(t)
	alice := h.addUser(t, "alice", "Alice", models.RoleUser)
	bob := h.addUser(t, "bob", "Bob", models.RoleUser)
	carol := h.addUser(t, "carol", "Carol", models.RoleUser)
	channelID := h.channels.CreateChannel("team", alice.ID, alice.ID, bob.ID)
	lonely := h.channels.CreateChannel("solo", carol.ID, carol.ID)

	aliceConn, bobConn, carolConn := h.connect(alice), h.connect(bob), h.connect(carol)

	tests := []struct {
		name  string
		in    dispatch.TypingInput
		alice int
		bob   int
		carol int
	}{
		{"group skips sender", dispatch.TypingInput{}, 0, 1, 1},
		{"private reaches peer", dispatch.TypingInput{To: int64(carol.ID)}, 0, 0, 1},
		{"self is dropped", dispatch.TypingInput{To: int64(alice.ID)}, 0, 0, 0},
		{"negative is dropped", dispatch.TypingInput{To: -3}, 0, 0, 0},
		{"channel reaches other members", dispatch.TypingInput{ChannelID: channelID}, 0, 1, 0},
		{"foreign channel is dropped", dispatch.TypingInput{ChannelID: lonely}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAll(aliceConn, bobConn, carolConn)
			h.engine.Typing(alice, aliceConn, tt.in)
			require.Equal(t, tt.alice, aliceConn.Count(dispatch.EventChatTyping))
			require.Equal(t, tt.bob, bobConn.Count(dispatch.EventChatTyping))
			require.Equal(t, tt.carol, carolConn.Count(dispatch.EventChatTyping))
		})
	}

	resetAll(bobConn)
	h.engine.Typing(alice, aliceConn, dispatch.TypingInput{ChannelID: channelID})
	require.Equal(t, dispatch.TypingEvent{From: alice.ID, FromNickname: "Alice", ChannelID: channelID},
		bobConn.Payloads(dispatch.EventChatTyping)[0])
	require.Empty(t, h.history.Keys())
}
