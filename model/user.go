package model

import "time"

// User 用户
type User struct {
	tableName struct{} `pg:"users"`

	Id        int64     `pg:"id,pk" json:"id"`
	Username  string    `pg:"username" json:"username"`
	Email     string    `pg:"email" json:"email"`
	Password  string    `pg:"password" json:"-"`
	Verified  bool      `pg:"verified,use_zero" json:"verified"`
	CreatedAt time.Time `pg:"created_at" json:"created_at"`
}
