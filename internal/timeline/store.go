package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenRegression marks a prepend that does not continue from the
	// store's oldest token.
	ErrTokenRegression = errors.New("pagination token regression")
	// ErrDuplicateBatch marks a prepend whose older token is already known.
	ErrDuplicateBatch = errors.New("duplicate batch")
)

// Batch is the set of blocks delivered by one sync or one backlog page,
// oldest first. OlderToken points at the history just before the batch.
type Batch struct {
	OlderToken string
	blocks     deque[*Block]
}

func (b *Batch) Len() int { return b.blocks.Len() }

// Block returns the i-th block, oldest first.
func (b *Batch) Block(i int) *Block { return b.blocks.At(i) }

// BatchStore holds the loaded timeline as batches ordered oldest to newest.
// The newest batch is open and receives live blocks.
type BatchStore struct {
	batches deque[*Batch]
	oldest  string
	known   map[string]struct{}
	blocks  int
	bounded bool
}

func NewBatchStore() *BatchStore {
	return &BatchStore{known: make(map[string]struct{})}
}

// OldestToken is the cursor for the next backlog page.
func (s *BatchStore) OldestToken() string { return s.oldest }

func (s *BatchStore) Batches() int { return s.batches.Len() }

func (s *BatchStore) Blocks() int { return s.blocks }

// Newest returns the open batch, creating it when the store is empty.
func (s *BatchStore) Newest() *Batch {
	if b, ok := s.batches.Back(); ok {
		return b
	}
	b := &Batch{}
	s.batches.PushBack(b)
	return b
}

// AppendLive adds block to the newest batch.
func (s *BatchStore) AppendLive(block *Block) {
	s.Newest().blocks.PushBack(block)
	s.blocks++
}

// NewestBlock returns the last block of the open batch.
func (s *BatchStore) NewestBlock() (*Block, bool) {
	b, ok := s.batches.Back()
	if !ok {
		return nil, false
	}
	return b.blocks.Back()
}

// CloseBatch freezes the newest batch with token as its older bound and
// opens a new one. The first boundary seen only records token as the store's
// oldest cursor, even when live blocks arrived before it.
func (s *BatchStore) CloseBatch(token string) {
	s.remember(token)
	if !s.bounded {
		s.bounded = true
		s.oldest = token
	} else if newest, ok := s.batches.Back(); ok {
		newest.OlderToken = token
	}
	s.batches.PushBack(&Batch{})
}

// PrependBatch inserts blocks (oldest first) as the new oldest batch. from
// must be the current oldest token and older must be new to the store;
// anything else is a caller defect and panics.
func (s *BatchStore) PrependBatch(from, older string, blocks []*Block) *Batch {
	if from != s.oldest {
		panic(fmt.Errorf("%w: prepend from %q but oldest is %q", ErrTokenRegression, from, s.oldest))
	}
	if older == "" {
		panic(fmt.Errorf("%w: prepend from %q has no older token", ErrTokenRegression, from))
	}
	if older == from {
		panic(fmt.Errorf("%w: older token %q equals its start", ErrDuplicateBatch, older))
	}
	if _, ok := s.known[older]; ok {
		panic(fmt.Errorf("%w: token %q already loaded", ErrDuplicateBatch, older))
	}

	batch := &Batch{OlderToken: older}
	for _, block := range blocks {
		batch.blocks.PushBack(block)
	}
	s.batches.PushFront(batch)
	s.blocks += len(blocks)
	s.oldest = older
	s.remember(older)
	return batch
}

// OlderTokens lists each batch's older bound, oldest batch first.
func (s *BatchStore) OlderTokens() []string {
	tokens := make([]string, 0, s.batches.Len())
	s.batches.Each(func(b *Batch) bool {
		tokens = append(tokens, b.OlderToken)
		return true
	})
	return tokens
}

func (s *BatchStore) remember(token string) {
	if token != "" {
		s.known[token] = struct{}{}
	}
}

// EachNewestFirst walks blocks from the newest to the oldest until fn
// returns false.
func (s *BatchStore) EachNewestFirst(fn func(*Block) bool) {
	s.batches.EachReverse(func(b *Batch) bool {
		keep := true
		b.blocks.EachReverse(func(block *Block) bool {
			keep = fn(block)
			return keep
		})
		return keep
	})
}

// EachBlock walks blocks from the oldest to the newest.
func (s *BatchStore) EachBlock(fn func(*Block)) {
	s.batches.Each(func(b *Batch) bool {
		b.blocks.Each(func(block *Block) bool {
			fn(block)
			return true
		})
		return true
	})
}
