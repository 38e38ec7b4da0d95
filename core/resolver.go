package core

import (
	"context"

	log "github.com/sirupsen/logrus"

	"chainchat/model"
)

// ResolveReply enriches msg with a point-in-time snapshot of the message
// it replies to. A reply to a vanished message degrades to a non-reply:
// ReplyTo is reset to nil and the submission continues. The referenced
// message is never mutated.
func ResolveReply(ctx context.Context, store MessageStore, msg *model.Message) {
	if msg.ReplyTo == nil {
		return
	}

	original, err := store.MessageByID(ctx, *msg.ReplyTo)
	if err != nil {
		log.Debugf("Reply target %v unavailable: %v", *msg.ReplyTo, err)
		msg.ReplyTo = nil
		msg.ReplyToUsername = ""
		msg.ReplyToText = ""
		return
	}

	msg.ReplyToUsername = original.Username
	msg.ReplyToText = original.Text
}
