package config

type Config struct {
	Name *string `json:"name"`

	Postgres *Postgres `json:"postgres"`
	Redis    *Redis    `json:"redis"`
	Ledger   *Ledger   `json:"ledger"`
	Chat     *Chat     `json:"chat"`
	Api      *Api      `json:"api"`
}
