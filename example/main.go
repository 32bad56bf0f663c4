// Command example runs a tiny cons-cell interpreter backed by cellpool: cells
// are {car, cdr} pairs addressed by pool.ID instead of pointers, and
// collection uses a ring buffer as the pending-roots work queue so marking
// never recurses into the Go call stack.
package main

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/AlexsanderHamir/ringbuffer"
	"github.com/tmravik/cellpool/pool"
)

const cellSize = 8 // car (4 bytes) + cdr (4 bytes)

func writeCell(cell []byte, car, cdr pool.ID) {
	binary.LittleEndian.PutUint32(cell[0:4], uint32(car))
	binary.LittleEndian.PutUint32(cell[4:8], uint32(cdr))
}

func readCell(cell []byte) (car, cdr pool.ID) {
	return pool.ID(binary.LittleEndian.Uint32(cell[0:4])), pool.ID(binary.LittleEndian.Uint32(cell[4:8]))
}

// heap wraps a pool and the current root set: every list whose head is in
// roots survives a collection.
type heap struct {
	roots []pool.ID
}

// mark walks every root's cdr chain using a ring buffer as the pending work
// queue rather than recursion, so arbitrarily long lists never blow the
// stack.
func (h *heap) mark(p *pool.Pool, _ any) int {
	pending := ringbuffer.New[pool.ID](len(h.roots) + 16)

	for _, root := range h.roots {
		if err := pending.Write(root); err != nil {
			return 1
		}
	}

	for pending.Len() > 0 {
		id, err := pending.Read()
		if err != nil {
			break
		}
		cell, ok := p.Get(id)
		if !ok {
			continue
		}
		p.Mark(id)

		_, cdr := readCell(cell)
		if cdr == pool.NoID {
			continue
		}
		if err := pending.Write(cdr); err != nil {
			return 1
		}
	}

	return 0
}

func cons(p *pool.Pool, car, cdr pool.ID) pool.ID {
	id := p.Alloc()
	if id == pool.NoID {
		log.Fatal("heap exhausted")
	}
	cell, _ := p.Get(id)
	writeCell(cell, car, cdr)
	return id
}

func list(h *heap, p *pool.Pool, values ...pool.ID) pool.ID {
	tail := pool.NoID
	for i := len(values) - 1; i >= 0; i-- {
		tail = cons(p, values[i], tail)
	}
	return tail
}

func length(p *pool.Pool, head pool.ID) int {
	n := 0
	for id := head; id != pool.NoID; {
		cell, ok := p.Get(id)
		if !ok {
			break
		}
		n++
		_, id = readCell(cell)
	}
	return n
}

func main() {
	h := &heap{}
	freed := 0

	p, err := pool.NewGrowable(pool.Config{
		CellSize:        cellSize,
		InitialCapacity: 8,
		MarkFn:          h.mark,
		FreeHook: func(_ *pool.Pool, _ pool.ID, _ any) {
			freed++
		},
	})
	if err != nil {
		log.Fatalf("pool.NewGrowable: %v", err)
	}

	a := list(h, p, 1, 2, 3)
	b := list(h, p, 4, 5)
	h.roots = []pool.ID{a, b}

	fmt.Printf("list a has %d cells, list b has %d cells\n", length(p, a), length(p, b))

	// Drop b: after the next collection its two cells rejoin the free
	// list and freed counts them.
	h.roots = []pool.ID{a}
	if err := p.ForceGC(); err != nil {
		log.Fatalf("ForceGC: %v", err)
	}

	fmt.Printf("after dropping list b: %d cells reclaimed, list a still has %d cells\n", freed, length(p, a))
}
