package config

type Chat struct {
	Enabled    *bool   `json:"enabled"`
	Listen     *string `json:"listen"`
	Timeout    *string `json:"timeout"`
	MaxConn    *int    `json:"maxConn"`
	SendBuffer *int    `json:"sendBuffer"`
}
