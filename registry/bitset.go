package registry

// chunkSet tracks received chunk indices as a fixed-size bitset.
// Membership and completeness checks stay cheap even for uploads
// with tens of thousands of chunks.
type chunkSet struct {
	words []uint64
	count int
	size  int
}

func newChunkSet(size int) *chunkSet {
	return &chunkSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set marks index as received and reports whether it was newly set
func (s *chunkSet) Set(index int) bool {
	word, bit := index/64, uint(index%64)
	if s.words[word]&(1<<bit) != 0 {
		return false
	}
	s.words[word] |= 1 << bit
	s.count++
	return true
}

// Has reports whether index has been received
func (s *chunkSet) Has(index int) bool {
	word, bit := index/64, uint(index%64)
	return s.words[word]&(1<<bit) != 0
}

// Count returns the number of received chunks
func (s *chunkSet) Count() int {
	return s.count
}

// Full reports whether every chunk index has been received
func (s *chunkSet) Full() bool {
	return s.count == s.size
}
