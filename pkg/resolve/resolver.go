package resolve

import (
	"math"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
)

// Entity is a level entity placed for the current tick
type Entity struct {
	*level.Entity

	Pos      core.Cell // effective grid cell after motion
	Angle    float64   // orientation in degrees, runtime override applied (facing for portals)
	Active   bool      // phase tag matches the active phase
	Velocity core.Vec3 // instantaneous motion velocity in cells per second
}

// Center returns the world position of the entity's effective cell
func (e Entity) Center() core.Vec3 {
	return e.Pos.Center()
}

// Resolve places every traceable entity of lvl for the runtime's elapsed
// time. Collectibles and entities that move off the grid are left out.
// Neither argument is modified.
func Resolve(lvl *level.Level, rt level.Runtime) []Entity {
	resolved := make([]Entity, 0, len(lvl.Entities))
	for i := range lvl.Entities {
		e := &lvl.Entities[i]
		if e.Kind == level.KindCollectible {
			continue
		}

		pos, velocity := Place(e, rt.Elapsed)
		if !pos.InBounds(lvl.Width, lvl.Height) {
			continue
		}

		angle := e.BaseOrientation()
		if override, ok := rt.Orientations[e.ID]; ok {
			angle = override
		}

		resolved = append(resolved, Entity{
			Entity:   e,
			Pos:      pos,
			Angle:    angle,
			Active:   rt.PhaseActive(e.PhaseTag),
			Velocity: velocity,
		})
	}
	return resolved
}

// Place returns the grid cell an entity occupies at time t together with
// its velocity. The offset sin(t*speed+phase)*range is rounded to whole
// cells; the velocity is the derivative of the unrounded offset.
func Place(e *level.Entity, t float64) (core.Cell, core.Vec3) {
	cell := e.Cell()
	m := e.Motion
	if m == nil || m.Range == 0 {
		return cell, core.Vec3{}
	}

	arg := t*m.Speed + m.Phase
	offset := int(math.Round(math.Sin(arg) * m.Range))
	speed := math.Cos(arg) * m.Range * m.Speed

	switch m.Axis {
	case level.AxisY:
		return cell.Add(0, offset), core.NewVec3(0, speed, 0)
	default:
		return cell.Add(offset, 0), core.NewVec3(speed, 0, 0)
	}
}
