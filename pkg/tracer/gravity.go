package tracer

import (
	"github.com/df07/go-lightpath/pkg/core"
	"github.com/df07/go-lightpath/pkg/resolve"
)

// bend pulls dir toward every gravity node whose radius covers pos. The
// pull falls off with the squared distance, floored near the node.
func bend(dir, pos core.Vec3, nodes []resolve.Entity) core.Vec3 {
	bent := dir
	for _, n := range nodes {
		to := n.Center().Subtract(pos)
		to.Z = 0
		d2 := to.LengthSquared()
		if d2 == 0 || d2 > n.Radius*n.Radius {
			continue
		}
		pull := n.Mass / max(d2, MinGravityDist2) * GravityStrength * StepLength
		bent = bent.Add(to.Normalize().Multiply(pull))
	}
	if bent == dir {
		return dir
	}
	if bent.LengthSquared() == 0 {
		return dir
	}
	return bent.Normalize()
}
