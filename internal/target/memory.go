package target

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"futprint/internal/fault"
)

// Memory is a sorted set of non-overlapping segments.
type Memory struct {
	segs []Segment
}

// NewMemory sorts segs and rejects empty or overlapping segments.
func NewMemory(segs []Segment) (*Memory, error) {
	sorted := append([]Segment(nil), segs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Base < sorted[j].Base })
	for i, seg := range sorted {
		if len(seg.Data) == 0 {
			return nil, fmt.Errorf("target: empty segment at 0x%x", seg.Base)
		}
		end, err := segmentEnd(seg)
		if err != nil {
			return nil, err
		}
		if i+1 < len(sorted) && end > sorted[i+1].Base {
			return nil, fmt.Errorf("target: segments at 0x%x and 0x%x overlap", seg.Base, sorted[i+1].Base)
		}
	}
	return &Memory{segs: sorted}, nil
}

func segmentEnd(seg Segment) (uint64, error) {
	n, err := safecast.Conv[uint64](len(seg.Data))
	if err != nil {
		return 0, err
	}
	end := seg.Base + n
	if end < seg.Base {
		return 0, fmt.Errorf("target: segment at 0x%x wraps the address space", seg.Base)
	}
	return end, nil
}

// find returns the segment containing addr.
func (m *Memory) find(addr uint64) (Segment, bool) {
	i := sort.Search(len(m.segs), func(i int) bool {
		return m.segs[i].Base+uint64(len(m.segs[i].Data)) > addr
	})
	if i == len(m.segs) || m.segs[i].Base > addr {
		return Segment{}, false
	}
	return m.segs[i], true
}

// ReadMemory copies bytes at addr into buf. A range running past the end
// of its segment yields a partial read; an unmapped addr is an error.
func (m *Memory) ReadMemory(addr uint64, buf []byte) (int, error) {
	seg, ok := m.find(addr)
	if !ok {
		return 0, fault.MemoryAccess(addr, uint64(len(buf)), "unmapped address", nil)
	}
	return copy(buf, seg.Data[addr-seg.Base:]), nil
}

// view returns size bytes at addr without copying. The range must lie in
// one segment.
func (m *Memory) view(addr, size uint64) ([]byte, error) {
	seg, ok := m.find(addr)
	if !ok {
		return nil, fault.MemoryAccess(addr, size, "unmapped address", nil)
	}
	off := addr - seg.Base
	if size > uint64(len(seg.Data))-off {
		return nil, fault.MemoryAccess(addr, size, "range crosses end of segment", nil)
	}
	return seg.Data[off : off+size : off+size], nil
}

// Mapped reports whether the whole range is readable.
func (m *Memory) Mapped(addr, size uint64) bool {
	_, err := m.view(addr, size)
	return err == nil
}

// Segments returns copies of the mapped segments in address order.
func (m *Memory) Segments() []Segment {
	out := make([]Segment, len(m.segs))
	for i, seg := range m.segs {
		out[i] = Segment{Base: seg.Base, Data: append([]byte(nil), seg.Data...)}
	}
	return out
}
