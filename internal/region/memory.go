package region

// MemoryAllocator - Honours the Allocator surface but backs storage with
// heap memory instead of a file; Wipe is a no-op and Name is always "".
// AllocateAtLeast does no page rounding and reports exactly n elements.
// Lets the map and its tests run without a backing file, per the
// allocator contract's "alternative in-memory allocator" clause.
type MemoryAllocator struct {
	elemSize int
}

// NewMemoryAllocator - Returns an allocator for elements of elemSize
// bytes.
func NewMemoryAllocator(elemSize int) *MemoryAllocator {
	return &MemoryAllocator{elemSize: elemSize}
}

func (a *MemoryAllocator) ElemSize() int { return a.elemSize }
func (a *MemoryAllocator) Name() string  { return "" }

func (a *MemoryAllocator) Allocate(n int) ([]byte, error) {
	return make([]byte, n*a.elemSize), nil
}

func (a *MemoryAllocator) AllocateAtLeast(n int) ([]byte, int, error) {
	buf, err := a.Allocate(n)
	return buf, n, err
}

func (a *MemoryAllocator) Reallocate(old []byte, nOld, nNew int) ([]byte, error) {
	buf := make([]byte, nNew*a.elemSize)
	overlap := nOld
	if nNew < overlap {
		overlap = nNew
	}
	copy(buf, old[:overlap*a.elemSize])
	return buf, nil
}

func (a *MemoryAllocator) Deallocate(buf []byte) error { return nil }
func (a *MemoryAllocator) Wipe() error                 { return nil }
