package core

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"chainchat/wire"
)

// Identity is the authenticated participant attached to a session,
// supplied by the auth layer at login.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is one websocket connection. It receives broadcasts from the
// moment it connects; it may submit messages only once authenticated.
type Session struct {
	ip       string
	identity *Identity

	chat *Chat
	conn *websocket.Conn

	sendCh    chan wire.Event
	closeOnce sync.Once
}

func newSession(chat *Chat, conn *websocket.Conn, ip string, identity *Identity) *Session {
	ss := &Session{
		ip:       ip,
		identity: identity,

		chat: chat,
		conn: conn,

		sendCh: make(chan wire.Event, chat.sendBuffer),
	}

	chat.wg.Add(1)
	go ss.writeLoop()
	return ss
}

func (ss *Session) handleEvent(e *wire.Event) {
	// Handle chat events
	switch e.Event {
	case wire.EventAuth:
		var params wire.AuthParams
		if err := wire.DecodeParams(e.Data, &params); err != nil {
			ss.sendError("Invalid auth params")
			return
		}
		if err := ss.handleAuth(params.Token); err != nil {
			ss.sendError(err.Error())
		}
	case wire.EventMessage:
		var params wire.MessageParams
		if err := wire.DecodeParams(e.Data, &params); err != nil {
			ss.sendError("Invalid message params")
			return
		}
		if _, err := ss.chat.Submit(context.Background(), ss.identity, params.Message, params.ReplyTo); err != nil {
			if err == ErrNotAuthenticated {
				ss.sendError("User not logged in")
				return
			}
			log.Errorf("Submit from %s failed: %v", ss.ip, err)
			ss.sendError("Message could not be delivered")
		}
	default:
		ss.sendError("Unknown event")
	}
}

// handleAuth upgrades the session to authenticated by resolving the
// presented token against the session store.
func (ss *Session) handleAuth(token string) error {
	identity, err := ss.chat.server.redis.SessionIdentity(token)
	if err != nil {
		log.Errorf("Session lookup failed: %v", err)
		return ErrNotAuthenticated
	}
	if identity == nil {
		return ErrNotAuthenticated
	}

	ss.identity = identity
	return nil
}

// Notify queues an event for this connection. A session that cannot
// keep up is disconnected rather than allowed to delay anyone else.
func (ss *Session) Notify(e wire.Event) {
	select {
	case ss.sendCh <- e:
	default:
		log.Debugf("Session %s too slow, disconnecting", ss.ip)
		ss.chat.removeSession(ss)
		ss.close()
	}
}

// sendError reports an error to this connection only, never broadcast.
func (ss *Session) sendError(msg string) {
	ss.Notify(wire.Event{
		Event: wire.EventError,
		Data:  wire.ErrorParams{Message: msg},
	})
}

func (ss *Session) writeLoop() {
	defer ss.chat.wg.Done()

	for {
		select {
		case <-ss.chat.quit:
			return

		case e := <-ss.sendCh:
			ss.conn.SetWriteDeadline(time.Now().Add(ss.chat.timeout))
			if err := ss.conn.WriteMessage(websocket.TextMessage, wire.MarshalEvent(e)); err != nil {
				log.Debugf("Send to %s failed: %v", ss.ip, err)
				ss.chat.removeSession(ss)
				ss.close()
				return
			}
		}
	}
}

func (ss *Session) close() {
	ss.closeOnce.Do(func() {
		ss.conn.Close()
	})
}
