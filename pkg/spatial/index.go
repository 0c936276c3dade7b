package spatial

import (
	"sort"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
)

// Index buckets resolved entities by grid cell. Each bucket is sorted by
// interaction priority, then by id, so scans are deterministic.
type Index struct {
	cells   map[core.Cell][]resolve.Entity
	portals map[string][]resolve.Entity // by link id
	gravity []resolve.Entity
	count   int
}

// Build creates an index over the resolved entities
func Build(entities []resolve.Entity) *Index {
	idx := &Index{
		cells:   make(map[core.Cell][]resolve.Entity),
		portals: make(map[string][]resolve.Entity),
		count:   len(entities),
	}

	for _, e := range entities {
		idx.cells[e.Pos] = append(idx.cells[e.Pos], e)
		if !e.Active {
			continue
		}
		switch e.Kind {
		case level.KindPortal:
			idx.portals[e.Link] = append(idx.portals[e.Link], e)
		case level.KindGravity:
			idx.gravity = append(idx.gravity, e)
		}
	}

	for _, bucket := range idx.cells {
		sort.SliceStable(bucket, func(i, j int) bool {
			return less(bucket[i], bucket[j])
		})
	}
	for _, ends := range idx.portals {
		sort.SliceStable(ends, func(i, j int) bool { return ends[i].ID < ends[j].ID })
	}
	sort.SliceStable(idx.gravity, func(i, j int) bool { return idx.gravity[i].ID < idx.gravity[j].ID })

	return idx
}

func less(a, b resolve.Entity) bool {
	pa, pb := level.Priority(a.Kind), level.Priority(b.Kind)
	if pa != pb {
		return pa < pb
	}
	return a.ID < b.ID
}

// At returns the entities in a cell in scan order. The slice must not be
// modified.
func (idx *Index) At(cell core.Cell) []resolve.Entity {
	return idx.cells[cell]
}

// Partner returns the active portal sharing the link of p, if any
func (idx *Index) Partner(p resolve.Entity) (resolve.Entity, bool) {
	for _, e := range idx.portals[p.Link] {
		if e.ID != p.ID {
			return e, true
		}
	}
	return resolve.Entity{}, false
}

// Gravity returns the active gravity nodes
func (idx *Index) Gravity() []resolve.Entity {
	return idx.gravity
}

// Len returns the number of indexed entities
func (idx *Index) Len() int {
	return idx.count
}

// Cells returns the number of occupied cells
func (idx *Index) Cells() int {
	return len(idx.cells)
}
