// Package export renders snapshots and scalar series as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/storage"
)

// Options controls snapshot rendering.
type Options struct {
	// Scale is pixels per world unit.
	Scale float64
	// View is the world region to draw. A zero view frames all particles.
	View       particle.AABB
	Background string
	// Fill is used for particles whose color is zero.
	Fill string
}

func DefaultOptions() Options {
	return Options{Scale: 200, Background: "#0a0a0a", Fill: "#3399ff"}
}

// SnapshotToSVG draws every particle of snap as a circle of the particle
// radius. World y grows upward, so rows are flipped.
func SnapshotToSVG(snap *storage.Snapshot, opts Options) string {
	if snap == nil {
		return ""
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	view := opts.View
	if view.Lower == view.Upper {
		view = bounds(snap, snap.Radius)
	}

	width := (view.Upper.X - view.Lower.X) * opts.Scale
	height := (view.Upper.Y - view.Lower.Y) * opts.Scale
	r := snap.Radius * opts.Scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, width, height, width, height))
	if opts.Background != "" {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Background))
	}

	sb.WriteString("<g>\n")
	for _, p := range snap.Particles {
		if p.X < view.Lower.X || p.X > view.Upper.X || p.Y < view.Lower.Y || p.Y > view.Upper.Y {
			continue
		}
		cx := (p.X - view.Lower.X) * opts.Scale
		cy := (view.Upper.Y - p.Y) * opts.Scale
		fill := opts.Fill
		opacity := 1.0
		if c := (particle.Color{R: p.R, G: p.G, B: p.B, A: p.A}); !c.IsZero() {
			fill = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
			opacity = float64(c.A) / 255
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.2f"/>
`, cx, cy, r, fill, opacity))
	}
	sb.WriteString("</g>\n</svg>")

	return sb.String()
}

// WriteSVG writes SnapshotToSVG(snap, opts) to w.
func WriteSVG(w io.Writer, snap *storage.Snapshot, opts Options) error {
	_, err := io.WriteString(w, SnapshotToSVG(snap, opts))
	return err
}

func bounds(snap *storage.Snapshot, pad float64) particle.AABB {
	if len(snap.Particles) == 0 {
		return particle.AABB{Upper: particle.Vec{X: 1, Y: 1}}
	}
	lo := particle.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := particle.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range snap.Particles {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return particle.AABB{
		Lower: particle.Vec{X: lo.X - pad, Y: lo.Y - pad},
		Upper: particle.Vec{X: hi.X + pad, Y: hi.Y + pad},
	}
}

// SeriesToSVG plots values against their index as a polyline, typically an
// energy series from a run.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	// 10% padding
	pad := (maxV - minV) * 0.1
	if pad == 0 {
		pad = 1
	}
	minV -= pad
	maxV += pad

	w, h := float64(width), float64(height)
	n := float64(len(values) - 1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path d="`, width, height, width, height))

	for i, v := range values {
		x := float64(i) / n * w
		y := h - (v-minV)/(maxV-minV)*h
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.2f,%.2f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.2f,%.2f", x, y))
		}
	}

	sb.WriteString(fmt.Sprintf(`" fill="none" stroke="%s" stroke-width="2"/>
</svg>`, strokeColor))

	return sb.String()
}
