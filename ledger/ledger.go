package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	"chainchat/model"
)

const (
	// DefaultDifficulty is the number of leading zero characters a valid
	// proof digest must carry.
	DefaultDifficulty = 4

	genesisProof        = 1
	genesisPreviousHash = "0"

	timestampLayout = "2006-01-02 15:04:05"
)

var (
	// ErrEmptyChain is returned when a chain without a genesis block is
	// handed to Validate.
	ErrEmptyChain = errors.New("ledger: empty chain")

	// ErrBrokenChain is returned when block indices are not contiguous
	// starting at 1.
	ErrBrokenChain = errors.New("ledger: non-contiguous block indices")
)

// Ledger owns the hash-linked chain of message blocks. All chain
// mutation goes through AppendMessage and Mine, guarded by a single
// mutex so a message submitted while a block is being sealed lands in
// exactly one block.
type Ledger struct {
	difficulty int

	// mineMu serializes whole mining runs so two concurrent Mine calls
	// cannot both seal against the same previous proof. Appends only
	// contend on mu.
	mineMu sync.Mutex

	mu    sync.RWMutex
	chain []Block
}

// New creates a ledger holding only the genesis block: index 1,
// proof 1, previous hash "0", no messages.
func New(difficulty int) *Ledger {
	if difficulty <= 0 {
		difficulty = DefaultDifficulty
	}

	l := &Ledger{
		difficulty: difficulty,
	}
	l.chain = append(l.chain, Block{
		Index:        1,
		Timestamp:    time.Now().Format(timestampLayout),
		Proof:        genesisProof,
		PreviousHash: genesisPreviousHash,
	})

	return l
}

// CurrentBlock returns a copy of the open block, the one messages are
// currently appended to.
func (l *Ledger) CurrentBlock() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.chain[len(l.chain)-1]
}

// Len returns the chain length.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.chain)
}

// Chain returns a copy of the full chain.
func (l *Ledger) Chain() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := make([]Block, len(l.chain))
	copy(chain, l.chain)
	return chain
}

// AppendMessage records a message in the open block. Safe to call
// concurrently with other appends and with Mine.
func (l *Ledger) AppendMessage(msg model.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := &l.chain[len(l.chain)-1]
	cur.Messages = append(cur.Messages, msg)
}

// Mine seals the open block and opens a new one. The proof-of-work
// search runs outside the lock against the sealed block's proof, which
// never changes. Messages appended while the search runs land in the
// block being sealed.
func (l *Ledger) Mine() Block {
	l.mineMu.Lock()
	defer l.mineMu.Unlock()

	l.mu.RLock()
	previousProof := l.chain[len(l.chain)-1].Proof
	l.mu.RUnlock()

	proof := l.ProofOfWork(previousProof)

	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.chain[len(l.chain)-1]
	block := Block{
		Index:        previous.Index + 1,
		Timestamp:    time.Now().Format(timestampLayout),
		Proof:        proof,
		PreviousHash: HashBlock(previous),
	}
	l.chain = append(l.chain, block)

	return block
}

// ProofOfWork returns the smallest candidate >= 0 satisfying
// ValidProof(previous, candidate). Termination is expected after
// O(16^difficulty) attempts.
func (l *Ledger) ProofOfWork(previous int64) int64 {
	var candidate int64
	for !l.ValidProof(previous, candidate) {
		candidate++
	}
	return candidate
}

// ValidProof reports whether the sha256 digest of candidate² − previous²
// starts with difficulty zero characters. Verification is a single hash,
// finding a proof is brute force.
func (l *Ledger) ValidProof(previous, candidate int64) bool {
	work := candidate*candidate - previous*previous
	sum := sha256.Sum256([]byte(strconv.FormatInt(work, 10)))
	digest := hex.EncodeToString(sum[:])

	for i := 0; i < l.difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}

// Validate walks the chain and checks every consecutive pair: the link
// hash must match and the proof pair must satisfy the work predicate.
// A chain that fails a check yields (false, nil). Structurally malformed
// input (empty chain, non-contiguous indices) is a caller error.
func (l *Ledger) Validate(chain []Block) (bool, error) {
	if len(chain) == 0 {
		return false, ErrEmptyChain
	}
	for i, b := range chain {
		if b.Index != int64(i)+1 {
			return false, ErrBrokenChain
		}
	}

	for i := 1; i < len(chain); i++ {
		previous, current := chain[i-1], chain[i]

		if current.PreviousHash != HashBlock(previous) {
			return false, nil
		}
		if !l.ValidProof(previous.Proof, current.Proof) {
			return false, nil
		}
	}

	return true, nil
}

// Valid validates the ledger's own chain.
func (l *Ledger) Valid() (bool, error) {
	return l.Validate(l.Chain())
}
