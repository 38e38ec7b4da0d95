package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"chainchat/model"
)

// Block 块对象
// Field order is the canonical serialization order and must not change,
// hashes are computed over the JSON encoding of this struct.
type Block struct {
	Index        int64           `json:"index"`
	Timestamp    string          `json:"timestamp"`
	Proof        int64           `json:"proof"`
	PreviousHash string          `json:"previous_hash"`
	Messages     []model.Message `json:"messages"`
}

// HashBlock returns the hex encoded sha256 digest of the block's
// canonical serialization. Deterministic across processes: encoding/json
// emits struct fields in declaration order.
func HashBlock(b Block) string {
	data, _ := json.Marshal(b)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
