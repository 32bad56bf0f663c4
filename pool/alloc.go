package pool

import "encoding/binary"

// initFreeList pushes ids [lo, hi) onto the free list in ascending order,
// so the first Alloc after construction or growth returns lo.
func (p *Pool) initFreeList(lo, hi ID) {
	for id := hi; id > lo; id-- {
		p.pushFree(id - 1)
	}
}

// pushFree links id as the new free-list head and marks it free.
func (p *Pool) pushFree(id ID) {
	p.writeLink(id, p.freeHead)
	p.freeHead = id
	p.free.Set(int(id))
}

// popFree pops and returns the free-list head. Callers must check
// p.freeHead != NoID first.
func (p *Pool) popFree() ID {
	id := p.freeHead
	p.freeHead = p.readLink(id)
	p.free.Clear(int(id))
	return id
}

func (p *Pool) writeLink(id, next ID) {
	off := int(id) * p.cellSize
	binary.LittleEndian.PutUint32(p.storage[off:off+idSize], uint32(next))
}

func (p *Pool) readLink(id ID) ID {
	off := int(id) * p.cellSize
	return ID(binary.LittleEndian.Uint32(p.storage[off : off+idSize]))
}

// Alloc returns an id naming a cell now owned by the caller. The cell's
// payload is zeroed. Priority order: pop the free list if non-empty; else
// run a full collection and pop if it freed anything; else, for growable
// pools, double capacity and pop one of the new slots; else return NoID.
func (p *Pool) Alloc() ID {
	p.guardReentrancy()

	if p.hasFree() {
		return p.takeFree()
	}

	p.collect()
	if p.hasFree() {
		return p.takeFree()
	}

	if p.grow() {
		return p.takeFree()
	}

	return NoID
}

// hasFree reports whether the free list is non-empty. Construction seeds
// freeHead to NoID so an empty list is distinguishable from "head is id 0".
func (p *Pool) hasFree() bool {
	return p.freeHead != NoID
}

func (p *Pool) takeFree() ID {
	id := p.popFree()
	p.zero(id)
	return id
}

func (p *Pool) zero(id ID) {
	off := int(id) * p.cellSize
	clear(p.storage[off : off+p.cellSize])
}

// grow doubles the pool's capacity via its MemoryProvider. It returns false
// if the provider rejects the request or a configured GrowthPolicy ceiling
// would be exceeded.
func (p *Pool) grow() bool {
	oldCap := p.capacity
	newCap := oldCap * 2
	if newCap == 0 {
		newCap = 1
	}

	if p.growth.Enable && p.growth.MaxCapacity > 0 && newCap > p.growth.MaxCapacity {
		if p.growth.MaxCapacity <= oldCap {
			return false
		}
		newCap = p.growth.MaxCapacity
	}

	oldSize := int(oldCap) * p.cellSize
	newSize := int(newCap) * p.cellSize

	region, ok := p.provider(p.storage, oldSize, newSize, p.providerUserData)
	if !ok {
		return false
	}

	p.storage = region
	p.marks.Resize(int(newCap))
	p.free.Resize(int(newCap))
	p.capacity = newCap
	p.initFreeList(oldCap, newCap)

	return true
}
