package core

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"chainchat/model"
	"chainchat/util"
	"chainchat/wire"
)

const timestampLayout = "2006-01-02 15:04:05"

// Chat accepts inbound message events from authenticated participants,
// coordinates reply resolution, persistence and the ledger, and fans the
// enriched message out to every connected session.
type Chat struct {
	server *Server

	sender     *Sender
	store      MessageStore
	timeout    time.Duration
	sendBuffer int

	srv      *http.Server
	upgrader websocket.Upgrader

	// submitMu serializes the append+publish tail of Submit so block
	// order and broadcast order agree on one serialization.
	submitMu sync.Mutex

	wg   sync.WaitGroup
	quit chan struct{}

	sessionsMu sync.RWMutex
	sessions   map[*Session]struct{}
}

func NewChat(server *Server) *Chat {
	cfg := server.cfg.Chat

	c := &Chat{
		server: server,

		sender:     NewSender(),
		store:      server.postgres,
		timeout:    util.MustParseDuration(*cfg.Timeout),
		sendBuffer: *cfg.SendBuffer,

		quit: make(chan struct{}),

		sessions: make(map[*Session]struct{}),
	}
	c.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024 * 4,
		WriteBufferSize: 1024 * 4,
		CheckOrigin: func(_ *http.Request) bool {
			return true
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", c.handleUpgrade)
	c.srv = &http.Server{Addr: *cfg.Listen, Handler: mux}

	c.wg.Add(1)
	go c.listen()
	return c
}

func (c *Chat) listen() {
	defer c.wg.Done()

	log.Infof("Chat listening on %s", c.srv.Addr)
	if err := c.srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Chat listen err: %v", err)
	}
}

func (c *Chat) handleUpgrade(w http.ResponseWriter, req *http.Request) {
	c.sessionsMu.RLock()
	full := len(c.sessions) >= *c.server.cfg.Chat.MaxConn
	c.sessionsMu.RUnlock()
	if full {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	// Browsers carry the login cookie into the upgrade request. Other
	// clients authenticate afterwards with an auth event.
	var identity *Identity
	if cookie, err := req.Cookie(SessionCookie); err == nil {
		identity, err = c.server.redis.SessionIdentity(cookie.Value)
		if err != nil {
			log.Errorf("Session lookup failed: %v", err)
			identity = nil
		}
	}

	conn, err := c.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Debugf("Upgrade failed: %v", err)
		return
	}

	ip, _, _ := net.SplitHostPort(req.RemoteAddr)
	ss := newSession(c, conn, ip, identity)
	c.registerSession(ss)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.handleConnection(ss)
	}()
}

func (c *Chat) handleConnection(ss *Session) {
	defer func() {
		c.removeSession(ss)
		ss.close()
	}()

	for {
		select {
		case <-c.quit:
			return

		default:
			ss.conn.SetReadDeadline(time.Now().Add(c.timeout))
			_, data, err := ss.conn.ReadMessage()
			if err != nil {
				log.Debugf("Client %s disconnected: %v", ss.ip, err)
				return
			}

			e, err := wire.UnmarshalEvent(data)
			if err != nil {
				log.Debugf("Invalid event data from %s: %v", ss.ip, string(data))
				continue
			}
			ss.handleEvent(&e)
		}
	}
}

// Submit runs the whole intake pipeline for one message: authentication
// check, content hash, reply snapshot, persistence, ledger append,
// broadcast. A store failure aborts before the ledger or any subscriber
// sees the message.
func (c *Chat) Submit(ctx context.Context, identity *Identity, text string, replyTo *int64) (*model.Message, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}

	msg := &model.Message{
		Username:    identity.Username,
		Email:       identity.Email,
		Text:        text,
		Timestamp:   time.Now().Format(timestampLayout),
		ContentHash: util.Sha256Hex(text),
		ReplyTo:     replyTo,
	}

	ResolveReply(ctx, c.store, msg)

	if _, err := c.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	// The ledger records the persisted shape; the avatar URL is derived
	// per delivery and stays out of block hashes.
	c.server.ledger.AppendMessage(*msg)

	msg.GravatarUrl = util.GravatarUrl(msg.Email)
	c.sender.Publish(wire.Event{Event: wire.EventMessage, Data: msg})

	return msg, nil
}

func (c *Chat) registerSession(ss *Session) {
	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()

	c.sender.Attach(ss)
	c.sessions[ss] = struct{}{}
	if len(c.sessions)%100 == 0 {
		log.Infof("[REG] Total number of sessions: %v", len(c.sessions))
	}
}

func (c *Chat) removeSession(ss *Session) {
	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()

	c.sender.Detach(ss)
	delete(c.sessions, ss)
}

func (c *Chat) Close() {
	close(c.quit)
	c.sender.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	c.srv.Shutdown(ctx)

	c.sessionsMu.Lock()
	for ss := range c.sessions {
		ss.close()
	}
	c.sessions = make(map[*Session]struct{})
	c.sessionsMu.Unlock()

	c.wg.Wait()
}
