package engine

import (
	"math"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// NodeFrame is one body ready to draw.
type NodeFrame struct {
	ID         string
	Position   visualization.Vec3
	Descriptor visualization.Descriptor
	Styled     bool // false until UpdateNodes has supplied a descriptor
}

// LinkFrame is one drawable link. Particles are points along the segment.
type LinkFrame struct {
	Source     visualization.Vec3
	Target     visualization.Vec3
	Descriptor visualization.LinkDescriptor
	Particles  []visualization.Vec3
}

// Frame is a consistent snapshot of everything a renderer draws.
type Frame struct {
	Camera CameraPose
	Nodes  []NodeFrame
	Links  []LinkFrame
	Width  int
	Height int
	Alpha  float64
}

// Snapshot captures the scene at now and advances particle animation by
// one frame. Links whose endpoints are missing are left out.
func (e *Engine) Snapshot(now time.Time) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.frames++
	f := Frame{
		Camera: e.camera.at(now),
		Nodes:  make([]NodeFrame, 0, len(e.bodies)),
		Width:  e.width,
		Height: e.height,
		Alpha:  e.alpha,
	}

	for _, b := range e.bodies {
		d, ok := e.nodeDesc[b.id]
		f.Nodes = append(f.Nodes, NodeFrame{ID: b.id, Position: b.pos, Descriptor: d, Styled: ok})
	}

	for _, ld := range e.linkDesc {
		s, okS := e.index[ld.Source]
		t, okT := e.index[ld.Target]
		if !okS || !okT {
			continue
		}
		lf := LinkFrame{
			Source:     e.bodies[s].pos,
			Target:     e.bodies[t].pos,
			Descriptor: ld,
		}
		lf.Particles = particlePositions(lf.Source, lf.Target, ld.Particles, ld.ParticleSpeed, e.frames)
		f.Links = append(f.Links, lf)
	}

	return f
}

// particlePositions spaces n particles evenly along src->dst, each
// advanced by speed of the segment per frame.
func particlePositions(src, dst visualization.Vec3, n int, speed float64, frame uint64) []visualization.Vec3 {
	if n <= 0 {
		return nil
	}
	out := make([]visualization.Vec3, n)
	for i := range out {
		_, t := math.Modf(float64(frame)*speed + float64(i)/float64(n))
		out[i] = src.Lerp(dst, t)
	}
	return out
}
