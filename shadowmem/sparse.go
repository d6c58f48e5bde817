package shadowmem

import "github.com/joeycumines/go-dprtlib/lid"

// Sparse is a map-based Shadow, the fallback backend for address ranges
// that don't justify the dense two-level table's leaf allocations.
type Sparse struct {
	table map[uint64]sigPair
}

// NewSparse constructs an empty Sparse shadow.
func NewSparse() *Sparse {
	return &Sparse{table: make(map[uint64]sigPair)}
}

func (s *Sparse) TestRead(addr uint64) lid.Signature  { return s.table[addr].read }
func (s *Sparse) TestWrite(addr uint64) lid.Signature { return s.table[addr].write }

func (s *Sparse) InsertRead(addr uint64, sig lid.Signature) lid.Signature {
	p := s.table[addr]
	prev := p.read
	p.read = sig
	s.table[addr] = p
	return prev
}

func (s *Sparse) InsertWrite(addr uint64, sig lid.Signature) lid.Signature {
	p := s.table[addr]
	prev := p.write
	p.write = sig
	s.table[addr] = p
	return prev
}

func (s *Sparse) UpdateRead(addr uint64, sig lid.Signature) {
	p := s.table[addr]
	p.read = sig
	s.table[addr] = p
}

func (s *Sparse) UpdateWrite(addr uint64, sig lid.Signature) {
	p := s.table[addr]
	p.write = sig
	s.table[addr] = p
}

func (s *Sparse) RemoveRead(addr uint64) {
	p, ok := s.table[addr]
	if !ok {
		return
	}
	p.read = lid.Zero
	if p.write == lid.Zero {
		delete(s.table, addr)
		return
	}
	s.table[addr] = p
}

func (s *Sparse) RemoveWrite(addr uint64) {
	p, ok := s.table[addr]
	if !ok {
		return
	}
	p.write = lid.Zero
	if p.read == lid.Zero {
		delete(s.table, addr)
		return
	}
	s.table[addr] = p
}
