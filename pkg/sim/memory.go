package sim

// pageSize is the granularity at which memory is lazily allocated. RV32I's
// address space spans text near 0 up through a stack near 0x7FFFFFF0; a
// flat byte array the size of that range is not viable, so memory is
// adapted here from the teacher's flat `[MemorySize]uint32` array
// (pkg/vm/vm.go) into a sparse, page-backed map that only pays for the
// regions a program actually touches.
const pageSize = 4096

type memory struct {
	pages map[uint32][]byte
}

func newMemory() *memory {
	return &memory{pages: map[uint32][]byte{}}
}

func (m *memory) pageFor(addr uint32, create bool) []byte {
	key := addr &^ (pageSize - 1)
	p, ok := m.pages[key]
	if !ok {
		if !create {
			return nil
		}
		p = make([]byte, pageSize)
		m.pages[key] = p
	}
	return p
}

// readByte returns the byte at addr, or 0 for never-written memory.
func (m *memory) readByte(addr uint32) byte {
	p := m.pageFor(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(pageSize-1)]
}

// writeByte stores v at addr and returns the previous value.
func (m *memory) writeByte(addr uint32, v byte) byte {
	p := m.pageFor(addr, true)
	off := addr & (pageSize - 1)
	old := p[off]
	p[off] = v
	return old
}

// readBytes/writeBytes read or overwrite a contiguous run without
// recording anything; used for initial program loading (construction is
// not undoable) and for State's multi-byte loads and stores.
func (m *memory) readBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.readByte(addr + uint32(i))
	}
	return out
}

func (m *memory) writeBytes(addr uint32, data []byte) []byte {
	old := make([]byte, len(data))
	for i, b := range data {
		old[i] = m.writeByte(addr+uint32(i), b)
	}
	return old
}
