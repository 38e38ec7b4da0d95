package core

import (
	"chainchat/config"
	"chainchat/ledger"
)

type Server struct {
	cfg      *config.Config
	postgres *Postgres
	redis    *Redis
	ledger   *ledger.Ledger

	chat *Chat
	api  *Api
}

func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,

		postgres: NewPostgres(cfg.Postgres),
		redis:    NewRedis(cfg.Redis),
		ledger:   ledger.New(*cfg.Ledger.Difficulty),
	}

	return s
}

func (s *Server) Start() {
	if *s.cfg.Chat.Enabled {
		s.chat = NewChat(s)
	}
	if *s.cfg.Api.Enabled {
		s.api = StartApi(s)
	}
}

func (s *Server) Close() {
	if s.chat != nil {
		s.chat.Close()
	}
	if s.api != nil {
		s.api.Close()
	}
	s.redis.Close()
	s.postgres.Close()
}
