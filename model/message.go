package model

// Message 聊天消息
type Message struct {
	tableName struct{} `pg:"messages"`

	Id              int64  `pg:"id,pk" json:"id"`
	Username        string `pg:"username" json:"username"`
	Email           string `pg:"email" json:"email"`
	Text            string `pg:"text" json:"text"`
	Timestamp       string `pg:"timestamp" json:"timestamp"`
	ContentHash     string `pg:"content_hash" json:"content_hash"`
	ReplyTo         *int64 `pg:"reply_to" json:"reply_to"`
	ReplyToUsername string `pg:"reply_to_username" json:"reply_to_username,omitempty"`
	ReplyToText     string `pg:"reply_to_text" json:"reply_to_text,omitempty"`

	GravatarUrl string `pg:"-" json:"gravatar_url,omitempty"`
}
