//go:build linux

package region

import (
	"crypto/rand"
	"os"

	"golang.org/x/sys/unix"
)

// FileAllocator - mmap-backed region allocator. Grounded on
// theflywheel-phash's Open/resize sequence (truncate, then mmap
// PROT_READ|PROT_WRITE, MAP_SHARED) and on the page-alignment and
// ftruncate+mmap+mremap ordering of original_source's mmap_allocator.h.
type FileAllocator struct {
	name     string
	elemSize int
	file     *os.File
}

// NewFileAllocator - Opens or creates name for use as the backing file of a
// region of elements of elemSize bytes. If name is empty, a fresh
// 16-character alphabetic name that does not collide with an existing
// entry in the working directory is generated.
func NewFileAllocator(name string, elemSize int) (*FileAllocator, error) {
	if name == "" {
		var err error
		name, err = freshName()
		if err != nil {
			return nil, &Error{Op: "new", Err: err}
		}
	}

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &Error{Op: "open", Name: name, Err: err}
	}

	return &FileAllocator{name: name, elemSize: elemSize, file: f}, nil
}

func (a *FileAllocator) ElemSize() int { return a.elemSize }
func (a *FileAllocator) Name() string  { return a.name }

func (a *FileAllocator) Allocate(n int) ([]byte, error) {
	size := int64(n) * int64(a.elemSize)
	if err := a.file.Truncate(size); err != nil {
		return nil, &Error{Op: "truncate", Name: a.name, Err: err}
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf, err := unix.Mmap(int(a.file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: "mmap", Name: a.name, Err: err}
	}
	return buf, nil
}

func (a *FileAllocator) AllocateAtLeast(n int) ([]byte, int, error) {
	page := unix.Getpagesize()
	want := n * a.elemSize
	rounded := ((want + page - 1) / page) * page
	n2 := rounded / a.elemSize
	buf, err := a.Allocate(n2)
	return buf, n2, err
}

func (a *FileAllocator) Reallocate(old []byte, nOld, nNew int) ([]byte, error) {
	newSize := int64(nNew) * int64(a.elemSize)
	if err := a.file.Truncate(newSize); err != nil {
		return nil, &Error{Op: "truncate", Name: a.name, Err: err}
	}
	if len(old) == 0 {
		return a.Allocate(nNew)
	}
	if newSize == 0 {
		if err := unix.Munmap(old); err != nil {
			return nil, &Error{Op: "munmap", Name: a.name, Err: err}
		}
		return []byte{}, nil
	}
	buf, err := unix.Mremap(old, int(newSize), unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, &Error{Op: "mremap", Name: a.name, Err: err}
	}
	return buf, nil
}

func (a *FileAllocator) Deallocate(buf []byte) error {
	if len(buf) > 0 {
		if err := unix.Msync(buf, unix.MS_SYNC); err != nil {
			return &Error{Op: "msync", Name: a.name, Err: err}
		}
		if err := unix.Munmap(buf); err != nil {
			return &Error{Op: "munmap", Name: a.name, Err: err}
		}
	}
	return a.file.Close()
}

func (a *FileAllocator) Wipe() error {
	if err := os.Remove(a.name); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "wipe", Name: a.name, Err: err}
	}
	return nil
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func freshName() (string, error) {
	for {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		for i, b := range raw {
			raw[i] = nameAlphabet[int(b)%len(nameAlphabet)]
		}
		name := string(raw)
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return name, nil
		}
	}
}
