package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chainchat/model"
)

func TestResolveReplyFound(t *testing.T) {
	store := newFakeStore()
	id, err := store.InsertMessage(context.Background(), &model.Message{
		Username: "alice",
		Text:     "the original",
	})
	require.NoError(t, err)

	msg := &model.Message{Username: "bob", Text: "a reply", ReplyTo: &id}
	ResolveReply(context.Background(), store, msg)

	require.NotNil(t, msg.ReplyTo)
	require.Equal(t, "alice", msg.ReplyToUsername)
	require.Equal(t, "the original", msg.ReplyToText)
}

func TestResolveReplyMissing(t *testing.T) {
	store := newFakeStore()

	missing := int64(42)
	msg := &model.Message{Username: "bob", Text: "a reply", ReplyTo: &missing}
	ResolveReply(context.Background(), store, msg)

	require.Nil(t, msg.ReplyTo)
	require.Empty(t, msg.ReplyToUsername)
	require.Empty(t, msg.ReplyToText)
}

func TestResolveReplyAbsent(t *testing.T) {
	store := newFakeStore()

	msg := &model.Message{Username: "bob", Text: "no reply"}
	ResolveReply(context.Background(), store, msg)

	require.Nil(t, msg.ReplyTo)
}

func TestResolveReplyDoesNotMutateOriginal(t *testing.T) {
	store := newFakeStore()
	id, err := store.InsertMessage(context.Background(), &model.Message{
		Username: "alice",
		Text:     "the original",
	})
	require.NoError(t, err)

	msg := &model.Message{Username: "bob", Text: "a reply", ReplyTo: &id}
	ResolveReply(context.Background(), store, msg)

	original, err := store.MessageByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "the original", original.Text)
	require.Empty(t, original.ReplyToUsername)
}
