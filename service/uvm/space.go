// Package uvm models a process's user address space: a sparse set of 4 KiB
// pages with read/write permissions, grown by sbrk and copied on fork. The
// kernel moves data across the boundary only through CopyOut and CopyIn,
// which check the whole range before touching any byte.
package uvm

import (
	"fmt"
	"sync"

	"github.com/viant/lottery/model/proc"
)

// PageSize is the size of a user page
const PageSize = 4096

// Perm represents page permissions
type Perm uint8

const (
	PermRead Perm = 1 << iota
	PermWrite

	PermRW = PermRead | PermWrite
)

type page struct {
	perm Perm
	data [PageSize]byte
}

// Space represents a user address space. Page zero is never mapped.
type Space struct {
	mu    sync.Mutex
	pages map[uint64]*page
	brk   uint64
}

func pageOf(va uint64) uint64 {
	return va / PageSize
}

func pageRoundUp(va uint64) uint64 {
	return (va + PageSize - 1) / PageSize * PageSize
}

// Size returns current program break
func (s *Space) Size() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brk
}

// Sbrk grows or shrinks the heap by n bytes and returns the previous break
func (s *Space) Sbrk(n int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.brk
	switch {
	case n > 0:
		newBrk := old + uint64(n)
		for va := pageRoundUp(old); va < newBrk; va += PageSize {
			s.pages[pageOf(va)] = &page{perm: PermRW}
		}
		s.brk = newBrk
	case n < 0:
		shrink := uint64(-n)
		if shrink > old-PageSize {
			return 0, fmt.Errorf("sbrk %d below heap start: %w", n, proc.ErrInvalidArgument)
		}
		newBrk := old - shrink
		for va := pageRoundUp(newBrk); va < old; va += PageSize {
			delete(s.pages, pageOf(va))
		}
		s.brk = newBrk
	}
	return old, nil
}

// Map maps n bytes starting at va with perm, outside the heap
func (s *Space) Map(va uint64, n int, perm Perm) error {
	if va < PageSize || n <= 0 {
		return fmt.Errorf("map %#x+%d: %w", va, n, proc.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := pageOf(va); p <= pageOf(va+uint64(n)-1); p++ {
		if existing, ok := s.pages[p]; ok {
			existing.perm = perm
			continue
		}
		s.pages[p] = &page{perm: perm}
	}
	return nil
}

// Protect changes permissions of mapped pages covering [va, va+n)
func (s *Space) Protect(va uint64, n int, perm Perm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages, err := s.walk(va, n, 0)
	if err != nil {
		return err
	}
	for _, p := range pages {
		p.perm = perm
	}
	return nil
}

// walk returns the pages covering [va, va+n) after checking that every one
// is mapped with perm
func (s *Space) walk(va uint64, n int, perm Perm) ([]*page, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 || va+uint64(n) < va {
		return nil, fmt.Errorf("range %#x+%d: %w", va, n, proc.ErrBoundaryFault)
	}
	var ret []*page
	for p := pageOf(va); p <= pageOf(va+uint64(n)-1); p++ {
		pg, ok := s.pages[p]
		if !ok || pg.perm&perm != perm {
			return nil, fmt.Errorf("page %#x: %w", p*PageSize, proc.ErrBoundaryFault)
		}
		ret = append(ret, pg)
	}
	return ret, nil
}

// CopyOut copies src to user address dst. Nothing is written unless the
// whole destination range is mapped writable.
func (s *Space) CopyOut(dst uint64, src []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages, err := s.walk(dst, len(src), PermWrite)
	if err != nil {
		return err
	}
	offset := dst % PageSize
	for _, pg := range pages {
		n := copy(pg.data[offset:], src)
		src = src[n:]
		offset = 0
	}
	return nil
}

// CopyIn copies len(dst) bytes from user address src
func (s *Space) CopyIn(dst []byte, src uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages, err := s.walk(src, len(dst), PermRead)
	if err != nil {
		return err
	}
	offset := src % PageSize
	for _, pg := range pages {
		n := copy(dst, pg.data[offset:])
		dst = dst[n:]
		offset = 0
	}
	return nil
}

// Clone returns a deep copy of the address space
func (s *Space) Clone() *Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := &Space{pages: make(map[uint64]*page, len(s.pages)), brk: s.brk}
	for k, pg := range s.pages {
		cp := *pg
		ret.pages[k] = &cp
	}
	return ret
}

// New creates an empty address space with the heap starting at page one
func New() *Space {
	return &Space{pages: map[uint64]*page{}, brk: PageSize}
}
