package core

import (
	"sync"

	"chainchat/wire"
)

type Subscriber interface {
	Notify(e wire.Event)
}

// Sender fans events out to every attached subscriber. Publishes are
// serialized through a single loop goroutine so all subscribers observe
// the same event order.
type Sender struct {
	eventCh chan wire.Event

	subsMu sync.RWMutex
	subs   []Subscriber

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewSender() *Sender {
	s := &Sender{
		eventCh: make(chan wire.Event, 16),

		quit: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *Sender) loop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.quit:
			return

		case e := <-s.eventCh:
			// Deliver against a snapshot: a subscriber may detach
			// itself from inside Notify.
			s.subsMu.RLock()
			subs := make([]Subscriber, len(s.subs))
			copy(subs, s.subs)
			s.subsMu.RUnlock()

			for _, v := range subs {
				v.Notify(e)
			}
		}
	}
}

// Publish queues an event for delivery to all current subscribers.
func (s *Sender) Publish(e wire.Event) {
	select {
	case s.eventCh <- e:
	case <-s.quit:
	}
}

func (s *Sender) Attach(subs ...Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.subs = append(s.subs, subs...)
}

func (s *Sender) Detach(sub Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for k, v := range s.subs {
		if sub == v {
			s.subs = append(s.subs[:k], s.subs[k+1:]...)
		}
	}
}

func (s *Sender) Close() {
	close(s.quit)

	s.wg.Wait()
}
