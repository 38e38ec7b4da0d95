package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chainchat/ledger"
	"chainchat/model"
	"chainchat/wire"
)

// fakeStore is an in-memory MessageStore for tests.
type fakeStore struct {
	mu         sync.Mutex
	nextId     int64
	msgs       map[int64]*model.Message
	order      []int64
	failInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{msgs: make(map[int64]*model.Message)}
}

func (f *fakeStore) InsertMessage(ctx context.Context, msg *model.Message) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failInsert {
		return 0, errors.New("insert failed")
	}

	f.nextId++
	msg.Id = f.nextId
	stored := *msg
	f.msgs[msg.Id] = &stored
	f.order = append(f.order, msg.Id)
	return msg.Id, nil
}

func (f *fakeStore) MessageByID(ctx context.Context, id int64) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.msgs[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	found := *msg
	return &found, nil
}

func (f *fakeStore) ListMessages(ctx context.Context) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var msgs []*model.Message
	for _, id := range f.order {
		found := *f.msgs[id]
		msgs = append(msgs, &found)
	}
	return msgs, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// chanSub records broadcast deliveries.
type chanSub struct {
	events chan wire.Event
}

func newChanSub() *chanSub {
	return &chanSub{events: make(chan wire.Event, 16)}
}

func (s *chanSub) Notify(e wire.Event) {
	s.events <- e
}

func (s *chanSub) next(t *testing.T) wire.Event {
	t.Helper()
	select {
	case e := <-s.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
		return wire.Event{}
	}
}

func newTestChat(t *testing.T, store MessageStore) *Chat {
	t.Helper()

	c := &Chat{
		server: &Server{ledger: ledger.New(2)},

		sender: NewSender(),
		store:  store,

		quit: make(chan struct{}),

		sessions: make(map[*Session]struct{}),
	}
	t.Cleanup(c.sender.Close)
	return c
}

func alice() *Identity {
	return &Identity{Username: "alice", Email: "alice@example.com"}
}

func TestSubmitUnauthenticated(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)

	_, err := c.Submit(context.Background(), nil, "hello", nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	// No side effects: nothing stored, nothing in the ledger.
	require.Equal(t, 0, store.count())
	require.Empty(t, c.server.ledger.CurrentBlock().Messages)
}

func TestSubmitHello(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)
	sub := newChanSub()
	c.sender.Attach(sub)

	msg, err := c.Submit(context.Background(), alice(), "hello", nil)
	require.NoError(t, err)

	require.NotZero(t, msg.Id)
	require.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", msg.ContentHash)
	require.Equal(t, "alice", msg.Username)
	require.Nil(t, msg.ReplyTo)
	require.NotEmpty(t, msg.GravatarUrl)

	block := c.server.ledger.CurrentBlock()
	require.Len(t, block.Messages, 1)
	require.Equal(t, msg.Id, block.Messages[0].Id)

	e := sub.next(t)
	require.Equal(t, wire.EventMessage, e.Event)
	delivered, ok := e.Data.(*model.Message)
	require.True(t, ok)
	require.Equal(t, msg.Id, delivered.Id)
}

func TestSubmitDeliversToAllSubscribers(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)
	first, second := newChanSub(), newChanSub()
	c.sender.Attach(first, second)

	_, err := c.Submit(context.Background(), alice(), "hello everyone", nil)
	require.NoError(t, err)

	require.Equal(t, wire.EventMessage, first.next(t).Event)
	require.Equal(t, wire.EventMessage, second.next(t).Event)
}

func TestSubmitReplySnapshot(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)

	original, err := c.Submit(context.Background(), alice(), "first!", nil)
	require.NoError(t, err)

	bob := &Identity{Username: "bob", Email: "bob@example.com"}
	reply, err := c.Submit(context.Background(), bob, "agreed", &original.Id)
	require.NoError(t, err)

	require.NotNil(t, reply.ReplyTo)
	require.Equal(t, original.Id, *reply.ReplyTo)
	require.Equal(t, "alice", reply.ReplyToUsername)
	require.Equal(t, "first!", reply.ReplyToText)
}

func TestSubmitReplyToMissingMessage(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)
	sub := newChanSub()
	c.sender.Attach(sub)

	missing := int64(999)
	msg, err := c.Submit(context.Background(), alice(), "into the void", &missing)
	require.NoError(t, err)

	// Degrades to a plain message, still persisted and broadcast.
	require.Nil(t, msg.ReplyTo)
	require.Empty(t, msg.ReplyToUsername)
	require.Equal(t, 1, store.count())
	require.Equal(t, wire.EventMessage, sub.next(t).Event)
}

func TestSubmitStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failInsert = true
	c := newTestChat(t, store)

	_, err := c.Submit(context.Background(), alice(), "hello", nil)
	require.Error(t, err)

	// Persist failed, so the ledger must not have seen the message.
	require.Empty(t, c.server.ledger.CurrentBlock().Messages)
}

func TestConcurrentSubmits(t *testing.T) {
	store := newFakeStore()
	c := newTestChat(t, store)

	const n = 16
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := c.Submit(context.Background(), alice(), "racing", nil)
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	msgs := c.server.ledger.CurrentBlock().Messages
	require.Len(t, msgs, n)

	seen := make(map[int64]bool)
	for _, m := range msgs {
		require.False(t, seen[m.Id], "message %d appended twice", m.Id)
		seen[m.Id] = true
	}
}
