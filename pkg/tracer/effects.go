package tracer

import (
	"math"

	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/resolve"
)

// Action is the variant of an Outcome
type Action int

const (
	Pass      Action = iota // entity does not consume the cell
	Continue                // beam carries on with Outcome.Beam
	Terminate               // beam stops at the entity
	Split                   // beam is replaced by Outcome.Children
)

// Outcome is the result of one entity acting on a beam
type Outcome struct {
	Action   Action
	Beam     Beam
	Children []Beam
	Reason   Reason

	// Snap moves the polyline end onto the entity centre before the
	// outcome is applied.
	Snap bool

	// Exit is set when the beam teleported through a portal pair
	Exit *resolve.Entity
}

func pass() Outcome                 { return Outcome{Action: Pass} }
func proceed(b Beam) Outcome        { return Outcome{Action: Continue, Beam: b} }
func terminate(r Reason) Outcome    { return Outcome{Action: Terminate, Reason: r, Snap: true} }
func split(children []Beam) Outcome { return Outcome{Action: Split, Children: children, Reason: ReasonSplit, Snap: true} }

// apply dispatches the effect of entity e on beam b. Gate requests and
// target hits are recorded on the run result.
func (t *tracer) apply(e resolve.Entity, b Beam) Outcome {
	switch e.Kind {
	case level.KindWall:
		return terminate(ReasonWall)
	case level.KindGate:
		return gate(e, b, t.rt)
	case level.KindMirror:
		return mirror(e, b)
	case level.KindPortal:
		return t.portal(e, b)
	case level.KindPrism:
		return prism(e, b)
	case level.KindFilter:
		return filter(e, b)
	case level.KindPolarizer:
		return polarizer(e, b)
	case level.KindLens:
		return lens(e, b)
	case level.KindPhaseShifter:
		b.Phase = core.WrapDegrees(b.Phase + e.Delta)
		return proceed(b)
	case level.KindReceptor:
		return t.receptor(e, b)
	case level.KindTarget:
		return t.target(e, b)
	default:
		return pass()
	}
}

func gate(e resolve.Entity, b Beam, rt level.Runtime) Outcome {
	if e.Open || rt.GateOpenFor(e.ID) > 0 {
		return pass()
	}
	return terminate(ReasonGate)
}

// mirror reflects the beam off a surface running at the entity angle.
// A moving Doppler mirror shifts the wavelength first: approaching the
// beam shortens it, receding lengthens it.
func mirror(e resolve.Entity, b Beam) Outcome {
	center := onPlane(e.Center(), b.Pos)

	if e.Doppler {
		shift := 1 + DopplerFactor*e.Velocity.Dot(b.Dir)
		b.Wavelength = core.ClampWavelength(b.Wavelength * shift)
	}

	b.Dir = reflectDir(b.Dir, mirrorNormal(e.Angle))
	b.Bounces++
	if b.Bounces > MaxBounces {
		return terminate(ReasonBounceCap)
	}
	b.Pos = center.Add(b.Dir.Multiply(SurfaceEpsilon))

	out := proceed(b)
	out.Snap = true
	return out
}

// mirrorNormal returns the unit normal of a surface at angle degrees
func mirrorNormal(angle float64) core.Vec3 {
	rad := core.Radians(angle)
	return core.NewVec3(-math.Sin(rad), math.Cos(rad), 0)
}

// reflectDir mirrors d about the surface with normal n
func reflectDir(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n))).Normalize()
}

// portal jumps the beam to the linked partner. The direction is carried
// from the entry facing frame into the exit facing frame.
func (t *tracer) portal(e resolve.Entity, b Beam) Outcome {
	exit, ok := t.idx.Partner(e)
	if !ok {
		core.Logf(t.logger, "portal %q has no active partner for link %q\n", e.ID, e.Link)
		return terminate(ReasonUnlinked)
	}

	b.Bounces++
	if b.Bounces > MaxBounces {
		return terminate(ReasonBounceCap)
	}

	b.Dir = b.Dir.RotateZ(core.Radians(exit.Angle - e.Angle)).Normalize()
	b.Pos = onPlane(exit.Center(), b.Pos).Add(b.Dir.Multiply(SurfaceEpsilon))

	out := proceed(b)
	out.Snap = true
	out.Exit = &exit
	return out
}

// prism fans the beam into one child per output. Only white light takes
// the output colours; coloured light keeps its own.
func prism(e resolve.Entity, b Beam) Outcome {
	outputs := e.PrismOutputs()
	n := len(outputs)

	share := b.Intensity / float64(n)
	if n >= 3 {
		share *= PrismFanLoss
	}

	center := onPlane(e.Center(), b.Pos)
	children := make([]Beam, 0, n)
	for _, o := range outputs {
		child := b
		child.Pos = center
		child.Dir = b.Dir.RotateZ(core.Radians(float64(o.Turn)*90 + e.Angle)).Normalize()
		child.Intensity = share
		child.Depth = b.Depth + 1
		if b.Color.IsWhite() {
			child.Color = o.Color
		}
		children = append(children, child)
	}
	return split(children)
}

// filter passes matching colours with a small loss. White filters pass
// everything and white beams take the filter colour.
func filter(e resolve.Entity, b Beam) Outcome {
	switch {
	case e.Color.IsWhite() || e.Color == b.Color:
	case b.Color.IsWhite():
		b.Color = e.Color
	default:
		return terminate(ReasonAbsorbed)
	}
	b.Intensity *= FilterLoss
	return proceed(b)
}

// polarizer attenuates by cos^2 of the angle between the beam polarization
// and the polarizer, then aligns the polarization.
func polarizer(e resolve.Entity, b Beam) Outcome {
	c := math.Cos(core.Radians(b.Polarization - e.Angle))
	factor := c * c
	if factor < PolarizerCutoff {
		return terminate(ReasonPolarized)
	}
	b.Intensity *= factor
	b.Polarization = e.Angle
	return proceed(b)
}

func lens(e resolve.Entity, b Beam) Outcome {
	switch e.Lens {
	case level.LensConvex:
		b.Width *= LensWidthFactor
		b.Intensity *= LensIntensityGain
	case level.LensConcave:
		b.Width /= LensWidthFactor
		b.Intensity /= LensIntensityGain
	default:
		return pass()
	}
	return proceed(b)
}

// receptor requests its gate open. Repeated requests keep the longest.
// A receptor wired to a gate that does not exist swallows the beam.
func (t *tracer) receptor(e resolve.Entity, b Beam) Outcome {
	t.result.ReceptorHits[e.ID] = true
	if g, ok := t.lvl.Entity(e.Gate); !ok || g.Kind != level.KindGate {
		core.Logf(t.logger, "receptor %q references missing gate %q\n", e.ID, e.Gate)
		return terminate(ReasonMissingGate)
	}
	t.result.GateTriggers[e.Gate] = max(t.result.GateTriggers[e.Gate], e.Duration)
	if e.PassThrough {
		return proceed(b)
	}
	return terminate(ReasonReceptor)
}

func (t *tracer) target(e resolve.Entity, b Beam) Outcome {
	t.result.Hits = append(t.result.Hits, TargetHit{
		TargetID:   e.ID,
		Color:      b.Color,
		Intensity:  b.Intensity,
		Phase:      b.Phase,
		Wavelength: b.Wavelength,
	})
	if e.TargetSpec().Absorbs() {
		return terminate(ReasonTarget)
	}
	return proceed(b)
}

// onPlane moves p onto the z plane of ref
func onPlane(p, ref core.Vec3) core.Vec3 {
	p.Z = ref.Z
	return p
}
