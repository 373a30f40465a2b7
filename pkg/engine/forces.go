package engine

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// distanceMin2 bounds the many-body denominator so coincident bodies do
// not produce unbounded impulses.
const distanceMin2 = 1.0

// body is a simulated node. Positions live here and never on graph.Node.
type body struct {
	id  string
	pos visualization.Vec3
	vel visualization.Vec3
}

// spring is a resolved link between two bodies.
type spring struct {
	source, target int
	strength       float64
	bias           float64
}

func (e *Engine) jiggle() float64 {
	return (e.rng.Float64() - 0.5) * 1e-6
}

// resolveSprings binds links to body indices. Dangling links and self-links
// exert no force; the count of dangling ones is returned.
func (e *Engine) resolveSprings() int {
	e.springs = e.springs[:0]
	count := make([]int, len(e.bodies))
	dangling := 0

	for _, l := range e.links {
		s, okS := e.index[l.Source]
		t, okT := e.index[l.Target]
		if !okS || !okT {
			dangling++
			continue
		}
		if s == t {
			continue
		}
		count[s]++
		count[t]++
		e.springs = append(e.springs, spring{source: s, target: t})
	}

	for i := range e.springs {
		sp := &e.springs[i]
		cs, ct := float64(count[sp.source]), float64(count[sp.target])
		sp.strength = 1 / math.Min(cs, ct)
		sp.bias = cs / (cs + ct)
	}
	return dangling
}

// applyLinkForce pulls linked bodies toward the configured link distance.
func (e *Engine) applyLinkForce(alpha float64) {
	for _, sp := range e.springs {
		src, tgt := e.bodies[sp.source], e.bodies[sp.target]

		d := tgt.pos.Add(tgt.vel).Sub(src.pos.Add(src.vel))
		if d.X == 0 {
			d.X = e.jiggle()
		}
		if d.Y == 0 {
			d.Y = e.jiggle()
		}
		if d.Z == 0 {
			d.Z = e.jiggle()
		}
		l := d.Len()
		l = (l - e.params.LinkDistance) / l * alpha * sp.strength
		d = d.Scale(l)

		tgt.vel = tgt.vel.Sub(d.Scale(sp.bias))
		src.vel = src.vel.Add(d.Scale(1 - sp.bias))
	}
}

// applyChargeForce applies pairwise charge between every pair of bodies.
// A negative strength repels.
func (e *Engine) applyChargeForce(alpha float64) {
	strength := e.params.ChargeStrength
	if strength == 0 {
		return
	}

	for i, a := range e.bodies {
		for j, b := range e.bodies {
			if i == j {
				continue
			}
			d := b.pos.Sub(a.pos)
			if d.X == 0 {
				d.X = e.jiggle()
			}
			if d.Y == 0 {
				d.Y = e.jiggle()
			}
			if d.Z == 0 {
				d.Z = e.jiggle()
			}
			l := d.Dot(d)
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			a.vel = a.vel.Add(d.Scale(strength * alpha / l))
		}
	}
}

// applyCenterForce translates every body so the centroid sits at the origin.
func (e *Engine) applyCenterForce() {
	if len(e.bodies) == 0 {
		return
	}
	var mean visualization.Vec3
	for _, b := range e.bodies {
		mean = mean.Add(b.pos)
	}
	mean = mean.Scale(1 / float64(len(e.bodies)))
	for _, b := range e.bodies {
		b.pos = b.pos.Sub(mean)
	}
}

// integrate applies velocity decay and moves every body.
func (e *Engine) integrate() {
	keep := 1 - e.params.VelocityDecay
	for _, b := range e.bodies {
		b.vel = b.vel.Scale(keep)
		b.pos = b.pos.Add(b.vel)
	}
}
