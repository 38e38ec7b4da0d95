package config

// Ledger 账本
type Ledger struct {
	Difficulty *int `json:"difficulty"`
}
