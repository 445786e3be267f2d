package duscan

import "sync"

// ShardCount is the number of independently locked inode shards.
const ShardCount = 128

type inodeShard struct {
	mu   sync.Mutex
	seen map[uint64]struct{}
}

// inodeSet records inodes across concurrent walkers.
type inodeSet struct {
	shards [ShardCount]inodeShard
}

func newInodeSet() *inodeSet {
	s := &inodeSet{}
	for i := range s.shards {
		s.shards[i].seen = make(map[uint64]struct{})
	}
	return s
}

// shardFor spreads sequential inode numbers across shards in runs of 256.
func shardFor(ino uint64) int {
	return int((ino >> 8) % ShardCount)
}

// add records ino and reports whether it was new. Inode 0 means unknown and
// is always new.
func (s *inodeSet) add(ino uint64) bool {
	if ino == 0 {
		return true
	}
	sh := &s.shards[shardFor(ino)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.seen[ino]; ok {
		return false
	}
	sh.seen[ino] = struct{}{}
	return true
}
