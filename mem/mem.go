/*
Package mem implements the composable allocators backing the Delaunay
triangulation's cell arena.

Every allocator follows the same contract: Allocate returns a null block
when it cannot satisfy the request, never panicking on exhaustion;
Deallocate nulls the block. Compositors additionally require Owns.
Blocks keep a reference to their backing buffer, so a block held by a
caller keeps the memory reachable.
*/
package mem

import (
	"unsafe"
)

// MemoryBlock is a contiguous aligned region. A null block (Ptr == nil)
// signals allocation failure.
type MemoryBlock struct {
	Ptr  unsafe.Pointer
	Size uintptr

	// backing buffer; retained so the garbage collector never reclaims
	// memory under a live block
	buf []byte
}

// NullBlock returns the empty block.
func NullBlock() MemoryBlock {
	return MemoryBlock{}
}

func (b MemoryBlock) IsNull() bool {
	return b.Ptr == nil
}

// Allocator is the uniform allocation contract.
type Allocator interface {
	// Allocate returns a block of at least size bytes aligned to align,
	// or a null block on failure. align must be a power of two.
	Allocate(size, align uintptr) MemoryBlock

	// Deallocate releases the block and nulls it. Deallocating a null
	// block is a no-op.
	Deallocate(b *MemoryBlock)
}

// Owner is implemented by allocators that can decide whether a block
// came from them; compositors require it of their primary allocator.
type Owner interface {
	Owns(b MemoryBlock) bool
}

func checkAlign(align uintptr) {
	if align == 0 || align&(align-1) != 0 {
		panic("mem: alignment must be a power of two")
	}
}

// alignUp rounds x up to a multiple of align.
func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// Mallocator allocates from the Go heap. It never fails for reasonable
// sizes and serves as the terminal fallback of allocator chains.
type Mallocator struct{}

func (Mallocator) Allocate(size, align uintptr) MemoryBlock {
	checkAlign(align)
	if size == 0 {
		return NullBlock()
	}
	buf := make([]byte, size+align-1)
	base := uintptr(unsafe.Pointer(&buf[0]))
	off := alignUp(base, align) - base
	return MemoryBlock{
		Ptr:  unsafe.Pointer(&buf[off]),
		Size: size,
		buf:  buf,
	}
}

func (Mallocator) Deallocate(b *MemoryBlock) {
	*b = NullBlock()
}

// StackAllocator bump-allocates from a single fixed buffer. Freeing the
// most recent block rewinds the cursor; freeing anything else tombstones
// the space.
type StackAllocator struct {
	data []byte
	pos  uintptr
}

// NewStackAllocator creates a stack allocator with a buffer of the given
// size.
func NewStackAllocator(size uintptr) *StackAllocator {
	return &StackAllocator{data: make([]byte, size)}
}

func (s *StackAllocator) Allocate(size, align uintptr) MemoryBlock {
	checkAlign(align)
	if size == 0 {
		return NullBlock()
	}
	base := uintptr(unsafe.Pointer(&s.data[0]))
	start := alignUp(base+s.pos, align) - base
	if start+size > uintptr(len(s.data)) {
		return NullBlock()
	}
	s.pos = start + size
	return MemoryBlock{
		Ptr:  unsafe.Pointer(&s.data[start]),
		Size: size,
		buf:  s.data,
	}
}

func (s *StackAllocator) Deallocate(b *MemoryBlock) {
	if b.IsNull() {
		return
	}
	base := uintptr(unsafe.Pointer(&s.data[0]))
	end := uintptr(b.Ptr) - base + b.Size
	if end == s.pos {
		s.pos = uintptr(b.Ptr) - base
	}
	*b = NullBlock()
}

func (s *StackAllocator) Owns(b MemoryBlock) bool {
	if b.IsNull() || len(s.data) == 0 {
		return false
	}
	base := uintptr(unsafe.Pointer(&s.data[0]))
	p := uintptr(b.Ptr)
	return p >= base && p < base+uintptr(len(s.data))
}

// MonotonicResource owns one contiguous region obtained from a backing
// allocator; sub-allocations bump-advance and individual deallocation is
// a no-op. Release returns the whole region at once.
type MonotonicResource struct {
	backing  Allocator
	resource MemoryBlock
	position uintptr
}

// NewMonotonicResource acquires a region of the given size from the
// backing allocator. A failed acquisition yields a resource that refuses
// all allocations.
func NewMonotonicResource(backing Allocator, size, align uintptr) *MonotonicResource {
	return &MonotonicResource{
		backing:  backing,
		resource: backing.Allocate(size, align),
	}
}

func (m *MonotonicResource) Allocate(size, align uintptr) MemoryBlock {
	checkAlign(align)
	if m.resource.IsNull() {
		return NullBlock()
	}
	base := uintptr(m.resource.Ptr)
	start := alignUp(base+m.position, align) - base
	if start+size > m.resource.Size {
		return NullBlock()
	}
	m.position = start + size
	return MemoryBlock{
		Ptr:  unsafe.Add(m.resource.Ptr, start),
		Size: size,
		buf:  m.resource.buf,
	}
}

func (m *MonotonicResource) Owns(b MemoryBlock) bool {
	if b.IsNull() || m.resource.IsNull() {
		return false
	}
	base := uintptr(m.resource.Ptr)
	p := uintptr(b.Ptr)
	return p >= base && p < base+m.resource.Size
}

// Release frees the whole region back to the backing allocator.
func (m *MonotonicResource) Release() {
	m.backing.Deallocate(&m.resource)
	m.position = 0
}

// ResourceAllocator adapts a MonotonicResource to the Allocator
// interface. It is a value type binding the resource by reference;
// copies share the resource and deallocation is a no-op.
type ResourceAllocator struct {
	Resource *MonotonicResource
}

func (r ResourceAllocator) Allocate(size, align uintptr) MemoryBlock {
	if r.Resource == nil {
		return NullBlock()
	}
	return r.Resource.Allocate(size, align)
}

func (ResourceAllocator) Deallocate(b *MemoryBlock) {
	*b = NullBlock()
}

func (r ResourceAllocator) Owns(b MemoryBlock) bool {
	return r.Resource != nil && r.Resource.Owns(b)
}

// FreeListAllocator recycles deallocated blocks of a fixed size.
// Deallocated blocks are pushed on a list; an allocation matching the
// block size pops the list instead of hitting the underlying allocator.
type FreeListAllocator struct {
	Underlying Allocator
	BlockSize  uintptr
	list       []MemoryBlock
}

func (f *FreeListAllocator) Allocate(size, align uintptr) MemoryBlock {
	if size == f.BlockSize && len(f.list) > 0 {
		b := f.list[len(f.list)-1]
		f.list = f.list[:len(f.list)-1]
		return b
	}
	return f.Underlying.Allocate(size, align)
}

func (f *FreeListAllocator) Deallocate(b *MemoryBlock) {
	if b.IsNull() {
		return
	}
	if b.Size == f.BlockSize {
		f.list = append(f.list, *b)
		*b = NullBlock()
		return
	}
	f.Underlying.Deallocate(b)
}

// Drain returns all recycled blocks to the underlying allocator.
func (f *FreeListAllocator) Drain() {
	for i := range f.list {
		f.Underlying.Deallocate(&f.list[i])
	}
	f.list = f.list[:0]
}

// FallbackAllocator tries the primary allocator and falls back on
// failure. Deallocation routes by primary ownership.
type FallbackAllocator struct {
	Primary interface {
		Allocator
		Owner
	}
	Fallback Allocator
}

func (f *FallbackAllocator) Allocate(size, align uintptr) MemoryBlock {
	if b := f.Primary.Allocate(size, align); !b.IsNull() {
		return b
	}
	return f.Fallback.Allocate(size, align)
}

func (f *FallbackAllocator) Deallocate(b *MemoryBlock) {
	if f.Primary.Owns(*b) {
		f.Primary.Deallocate(b)
		return
	}
	f.Fallback.Deallocate(b)
}

// Segregator routes requests by size at both allocation and
// deallocation.
type Segregator struct {
	Limit uintptr
	Small Allocator
	Large Allocator
}

func (s *Segregator) Allocate(size, align uintptr) MemoryBlock {
	if size <= s.Limit {
		return s.Small.Allocate(size, align)
	}
	return s.Large.Allocate(size, align)
}

func (s *Segregator) Deallocate(b *MemoryBlock) {
	if b.Size <= s.Limit {
		s.Small.Deallocate(b)
		return
	}
	s.Large.Deallocate(b)
}

func (s *Segregator) Owns(b MemoryBlock) bool {
	var a Allocator
	if b.Size <= s.Limit {
		a = s.Small
	} else {
		a = s.Large
	}
	if o, ok := a.(Owner); ok {
		return o.Owns(b)
	}
	return false
}

// TrackingAllocator accumulates the number of outstanding bytes of its
// underlying allocator.
type TrackingAllocator struct {
	Underlying Allocator
	allocated  uintptr
}

func (t *TrackingAllocator) Allocate(size, align uintptr) MemoryBlock {
	b := t.Underlying.Allocate(size, align)
	if !b.IsNull() {
		t.allocated += b.Size
	}
	return b
}

func (t *TrackingAllocator) Deallocate(b *MemoryBlock) {
	if !b.IsNull() {
		t.allocated -= b.Size
	}
	t.Underlying.Deallocate(b)
}

// Allocated returns the outstanding byte count.
func (t *TrackingAllocator) Allocated() uintptr {
	return t.allocated
}

func (t *TrackingAllocator) Owns(b MemoryBlock) bool {
	if o, ok := t.Underlying.(Owner); ok {
		return o.Owns(b)
	}
	return false
}
