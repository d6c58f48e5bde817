package shadowmem

import "github.com/joeycumines/go-dprtlib/lid"

// DefaultLeafBits is the default size (as a power of two) of a Dense
// shadow's leaf blocks, each allocated lazily so sparsely-touched address
// ranges stay cheap.
const DefaultLeafBits = 16

// Dense is a two-level array-of-arrays Shadow: the address is split into
// a high half (selecting a lazily-allocated leaf block) and a low half
// (the index within that block). It amortizes well over dense address
// ranges because most accesses to a leaf's span only pay the allocation
// cost once.
type Dense struct {
	leafBits  uint
	leafSize  uint64
	leafMask  uint64
	leaves    map[uint64]*[]sigPair
}

// NewDense constructs a Dense shadow with leaf blocks of size
// 2^leafBits. A non-positive or zero leafBits falls back to
// DefaultLeafBits.
func NewDense(leafBits uint) *Dense {
	if leafBits == 0 {
		leafBits = DefaultLeafBits
	}
	size := uint64(1) << leafBits
	return &Dense{
		leafBits: leafBits,
		leafSize: size,
		leafMask: size - 1,
		leaves:   make(map[uint64]*[]sigPair),
	}
}

func (d *Dense) split(addr uint64) (high uint64, low uint64) {
	return addr >> d.leafBits, addr & d.leafMask
}

// leaf returns the leaf block for high, allocating it lazily if create
// is true and it doesn't already exist. Returns nil if the leaf doesn't
// exist and create is false.
func (d *Dense) leaf(high uint64, create bool) *[]sigPair {
	if l, ok := d.leaves[high]; ok {
		return l
	}
	if !create {
		return nil
	}
	block := make([]sigPair, d.leafSize)
	d.leaves[high] = &block
	return &block
}

func (d *Dense) TestRead(addr uint64) lid.Signature {
	high, low := d.split(addr)
	l := d.leaf(high, false)
	if l == nil {
		return lid.Zero
	}
	return (*l)[low].read
}

func (d *Dense) TestWrite(addr uint64) lid.Signature {
	high, low := d.split(addr)
	l := d.leaf(high, false)
	if l == nil {
		return lid.Zero
	}
	return (*l)[low].write
}

func (d *Dense) InsertRead(addr uint64, sig lid.Signature) lid.Signature {
	high, low := d.split(addr)
	l := d.leaf(high, true)
	prev := (*l)[low].read
	(*l)[low].read = sig
	return prev
}

func (d *Dense) InsertWrite(addr uint64, sig lid.Signature) lid.Signature {
	high, low := d.split(addr)
	l := d.leaf(high, true)
	prev := (*l)[low].write
	(*l)[low].write = sig
	return prev
}

func (d *Dense) UpdateRead(addr uint64, sig lid.Signature) {
	high, low := d.split(addr)
	l := d.leaf(high, true)
	(*l)[low].read = sig
}

func (d *Dense) UpdateWrite(addr uint64, sig lid.Signature) {
	high, low := d.split(addr)
	l := d.leaf(high, true)
	(*l)[low].write = sig
}

func (d *Dense) RemoveRead(addr uint64) {
	high, low := d.split(addr)
	l := d.leaf(high, false)
	if l == nil {
		return
	}
	(*l)[low].read = lid.Zero
}

func (d *Dense) RemoveWrite(addr uint64) {
	high, low := d.split(addr)
	l := d.leaf(high, false)
	if l == nil {
		return
	}
	(*l)[low].write = lid.Zero
}
