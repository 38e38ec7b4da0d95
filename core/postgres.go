package core

import (
	"context"
	"strings"
	"time"

	"github.com/go-pg/pg/v10"

	"chainchat/config"
	"chainchat/model"
)

type Postgres struct {
	db *pg.DB

	ctx context.Context
}

func NewPostgres(cfg *config.Postgres) *Postgres {
	ctx := context.Background()

	opts := &pg.Options{
		Addr:     *cfg.Address,
		User:     *cfg.Username,
		Password: *cfg.Password,
		Database: *cfg.Database,
	}
	if cfg.PoolSize != nil {
		opts.PoolSize = *cfg.PoolSize
	}

	db := pg.Connect(opts)
	if err := db.Ping(ctx); err != nil {
		panic(err)
	}

	return &Postgres{
		db: db,

		ctx: ctx,
	}
}

func (p *Postgres) Close() {
	p.db.Close()
}

// InsertMessage 写入消息
func (p *Postgres) InsertMessage(ctx context.Context, msg *model.Message) (int64, error) {
	if _, err := p.db.ModelContext(ctx, msg).Insert(); err != nil {
		return 0, err
	}
	return msg.Id, nil
}

// MessageByID 查询消息
func (p *Postgres) MessageByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	if err := p.db.ModelContext(ctx, &msg).Where("id = ?", id).First(); err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListMessages 查询消息历史
func (p *Postgres) ListMessages(ctx context.Context) ([]*model.Message, error) {
	var msgs []*model.Message
	if err := p.db.ModelContext(ctx, &msgs).Order("id ASC").Select(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// RegisterUser 用户注册
func (p *Postgres) RegisterUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	email = strings.ToLower(email)

	var existing model.User
	err := p.db.ModelContext(ctx, &existing).Where("email = ?", email).First()
	if err == nil {
		return nil, ErrUserExists
	}
	if err != pg.ErrNoRows {
		return nil, err
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Verified:  true,
		CreatedAt: time.Now(),
	}
	if _, err := p.db.ModelContext(ctx, user).Insert(); err != nil {
		return nil, err
	}

	return user, nil
}

// UserByName 查询用户
func (p *Postgres) UserByName(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := p.db.ModelContext(ctx, &user).Where("username = ?", username).First(); err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
