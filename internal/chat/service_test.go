package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkanrb/agenthub-server/internal/realtime"
	"github.com/ashkanrb/agenthub-server/internal/store"
	"github.com/ashkanrb/agenthub-server/internal/store/sqlite"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, endpoint, content string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type stubFiles struct {
	path string
	err  error
}

func (f *stubFiles) SaveMessageFile(filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type testEnv struct {
	store   *sqlite.SQLiteStore
	hub     *realtime.Hub
	replies *stubGenerator
	files   *stubFiles
	svc     *Service
	userID  int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	user, err := st.CreateUser(context.Background(), "owner@example.com", "hash", "Own", "Er")
	require.NoError(t, err)

	logger := zerolog.Nop()
	hub := realtime.NewHub(&logger)
	t.Cleanup(hub.Close)

	replies := &stubGenerator{reply: "generated"}
	files := &stubFiles{path: "messages/abc_file.txt"}

	return &testEnv{
		store:   st,
		hub:     hub,
		replies: replies,
		files:   files,
		svc:     NewService(st, hub, replies, files, &logger),
		userID:  user.ID,
	}
}

func TestSubmitCreatesConversationWhenAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		AuthorID: env.userID,
		Content:  "hi",
		Endpoint: "http://agent.test/hook",
	})
	require.NoError(t, err)
	require.NotZero(t, msg.ConversationID)
	assert.False(t, msg.IsSystem)

	// The system reply must reuse the conversation created for the user
	// message, never create a second one.
	convs, err := env.store.ListConversationsByUser(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, msg.ConversationID, convs[0].ID)

	msgs, err := env.store.ListMessagesByConversation(ctx, msg.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, msg.ConversationID, msgs[1].ConversationID)
}

func TestSubmitTargetsExistingConversation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.store.CreateConversation(ctx, env.userID)
	require.NoError(t, err)

	msg, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		ConversationID: &conv.ID,
		AuthorID:       env.userID,
		Content:        "hello",
		Endpoint:       "http://agent.test/hook",
	})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, msg.ConversationID)
}

func TestSubmitSuccessPersistsOrderedPair(t *testing.T) {
	env := newTestEnv(t)
	env.replies.reply = "reply R"
	ctx := context.Background()

	msg, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		AuthorID: env.userID,
		Content:  "question",
		Endpoint: "http://agent.test/hook",
	})
	require.NoError(t, err)

	msgs, err := env.store.ListMessagesByConversation(ctx, msg.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.False(t, msgs[0].IsSystem)
	assert.Equal(t, "question", msgs[0].Content)
	assert.True(t, msgs[1].IsSystem)
	assert.Equal(t, "reply R", msgs[1].Content)
	assert.Equal(t, msgs[0].ConversationID, msgs[1].ConversationID)
}

func TestSubmitGatewayFailureLeavesSingleMessage(t *testing.T) {
	env := newTestEnv(t)
	env.replies.err = errors.New("endpoint down")
	ctx := context.Background()

	msg, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		AuthorID: env.userID,
		Content:  "hi",
		Endpoint: "http://agent.test/hook",
	})
	require.NoError(t, err, "gateway failure must not fail the submission")

	msgs, err := env.store.ListMessagesByConversation(ctx, msg.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsSystem)
}

func TestSubmitRejectsForeignConversationWithoutWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other, err := env.store.CreateUser(ctx, "other@example.com", "hash", "Ot", "Her")
	require.NoError(t, err)
	conv, err := env.store.CreateConversation(ctx, other.ID)
	require.NoError(t, err)

	_, err = env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		ConversationID: &conv.ID,
		AuthorID:       env.userID,
		Content:        "intrusion",
		Endpoint:       "http://agent.test/hook",
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Zero(t, env.replies.calls)

	msgs, err := env.store.ListMessagesByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSubmitUnknownConversation(t *testing.T) {
	env := newTestEnv(t)

	missing := int64(9999)
	_, err := env.svc.SubmitUserMessage(context.Background(), &SubmitRequest{
		ConversationID: &missing,
		AuthorID:       env.userID,
		Content:        "hi",
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSubmitAttachmentFailureAbortsBeforeAnyWrite(t *testing.T) {
	env := newTestEnv(t)
	env.files.err = errors.New("disk full")
	ctx := context.Background()

	_, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		AuthorID:   env.userID,
		Content:    "hi",
		Attachment: &Attachment{Filename: "a.txt"},
		Endpoint:   "http://agent.test/hook",
	})
	assert.ErrorIs(t, err, ErrAttachmentStorage)

	convs, err := env.store.ListConversationsByUser(ctx, env.userID)
	require.NoError(t, err)
	assert.Empty(t, convs, "no partial conversation may exist")
}

func TestSubmitStoresAttachmentPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg, err := env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		AuthorID:   env.userID,
		Content:    "with file",
		Attachment: &Attachment{Filename: "file.txt"},
		Endpoint:   "http://agent.test/hook",
	})
	require.NoError(t, err)
	require.NotNil(t, msg.FilePath)
	assert.Equal(t, "messages/abc_file.txt", *msg.FilePath)
}

func TestSubmitRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SubmitUserMessage(context.Background(), &SubmitRequest{
		AuthorID: env.userID,
		Content:  "   ",
	})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestSubmitBroadcastsBothMessagesInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.replies.reply = "reply R"
	ctx := context.Background()

	conv, err := env.store.CreateConversation(ctx, env.userID)
	require.NoError(t, err)

	events, _ := env.hub.Subscribe(t.Context(), realtime.ConversationChannel(conv.ID))

	_, err = env.svc.SubmitUserMessage(ctx, &SubmitRequest{
		ConversationID: &conv.ID,
		AuthorID:       env.userID,
		Content:        "question",
		Endpoint:       "http://agent.test/hook",
	})
	require.NoError(t, err)

	first := receiveEvent(t, events)
	assert.False(t, first.IsSystem)
	assert.Equal(t, "question", first.Content)
	require.NotNil(t, first.User.ID)
	assert.Equal(t, env.userID, *first.User.ID)

	second := receiveEvent(t, events)
	assert.True(t, second.IsSystem)
	assert.Equal(t, "reply R", second.Content)
	assert.Nil(t, second.User.ID)
	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func receiveEvent(t *testing.T, ch <-chan []byte) realtime.MessageEvent {
	t.Helper()

	select {
	case payload := <-ch:
		var event realtime.MessageEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast event")
		return realtime.MessageEvent{}
	}
}

func TestMessageUpdateAndDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.store.CreateConversation(ctx, env.userID)
	require.NoError(t, err)
	msg, err := env.store.CreateMessage(ctx, &store.Message{ConversationID: conv.ID, Content: "orig"})
	require.NoError(t, err)

	owner := Actor{UserID: env.userID}
	stranger := Actor{UserID: env.userID + 100}

	newContent := "edited"
	updated, err := env.svc.UpdateMessage(ctx, owner, msg.ID, MessageUpdate{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = env.svc.UpdateMessage(ctx, stranger, msg.ID, MessageUpdate{Content: &newContent})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = env.svc.DeleteMessage(ctx, stranger, msg.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, env.svc.DeleteMessage(ctx, owner, msg.ID))
	_, err = env.svc.GetMessage(ctx, owner, msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListMessagesAllowsAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.store.CreateConversation(ctx, env.userID)
	require.NoError(t, err)
	_, err = env.store.CreateMessage(ctx, &store.Message{ConversationID: conv.ID, Content: "hi"})
	require.NoError(t, err)

	admin := Actor{UserID: env.userID + 1, IsAdmin: true}
	msgs, err := env.svc.ListMessages(ctx, admin, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	stranger := Actor{UserID: env.userID + 2}
	_, err = env.svc.ListMessages(ctx, stranger, conv.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDeleteConversationOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conv, err := env.store.CreateConversation(ctx, env.userID)
	require.NoError(t, err)

	admin := Actor{UserID: env.userID + 1, IsAdmin: true}
	assert.ErrorIs(t, env.svc.DeleteConversation(ctx, admin, conv.ID), ErrNotAuthorized)

	require.NoError(t, env.svc.DeleteConversation(ctx, Actor{UserID: env.userID}, conv.ID))
	_, err = env.svc.GetConversation(ctx, Actor{UserID: env.userID}, conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
