package config

type Redis struct {
	Address  *string `json:"address"`
	Password *string `json:"password"`
	Prefix   *string `json:"prefix"`
	Database *int    `json:"database"`
	PoolSize *int    `json:"poolSize"`
}
