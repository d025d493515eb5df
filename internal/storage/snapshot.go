package storage

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/liquidsim/internal/particle"
)

// ParticleRow is one particle in a snapshot file.
type ParticleRow struct {
	Index int     `csv:"index" json:"index"`
	X     float64 `csv:"x" json:"x"`
	Y     float64 `csv:"y" json:"y"`
	VX    float64 `csv:"vx" json:"vx"`
	VY    float64 `csv:"vy" json:"vy"`
	Flags string  `csv:"flags" json:"flags"`
	Group int     `csv:"group" json:"group"`
	R     uint8   `csv:"r" json:"r"`
	G     uint8   `csv:"g" json:"g"`
	B     uint8   `csv:"b" json:"b"`
	A     uint8   `csv:"a" json:"a"`
}

// Snapshot is the state of every particle at one instant.
type Snapshot struct {
	Time      float64       `json:"time"`
	Radius    float64       `json:"radius"`
	Particles []ParticleRow `json:"particles"`
}

// Capture copies the live particles of s. Particles outside any group get
// group -1; grouped particles are numbered by list order.
func Capture(s *particle.System, t float64) *Snapshot {
	groupIDs := make(map[*particle.Group]int, s.GroupCount())
	for i, g := range s.Groups() {
		groupIDs[g] = i
	}

	pos, vel, flags, colors := s.Positions(), s.Velocities(), s.Flags(), s.Colors()
	rows := make([]ParticleRow, len(pos))
	for i := range pos {
		group := -1
		if g := s.ParticleGroup(i); g != nil {
			group = groupIDs[g]
		}
		row := ParticleRow{
			Index: i,
			X:     pos[i].X,
			Y:     pos[i].Y,
			VX:    vel[i].X,
			VY:    vel[i].Y,
			Flags: flags[i].String(),
			Group: group,
		}
		c := colors[i]
		row.R, row.G, row.B, row.A = c.R, c.G, c.B, c.A
		rows[i] = row
	}
	return &Snapshot{Time: t, Radius: s.Radius(), Particles: rows}
}

func (s *Snapshot) Positions() []particle.Vec {
	out := make([]particle.Vec, len(s.Particles))
	for i, p := range s.Particles {
		out[i] = particle.Vec{X: p.X, Y: p.Y}
	}
	return out
}

func (s *Snapshot) Colors() []particle.Color {
	out := make([]particle.Color, len(s.Particles))
	for i, p := range s.Particles {
		out[i] = particle.Color{R: p.R, G: p.G, B: p.B, A: p.A}
	}
	return out
}

func (s *Snapshot) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(&s.Particles, w); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotCSV reads rows written by WriteCSV. Time and Radius are not
// part of the file.
func ReadSnapshotCSV(r io.Reader) (*Snapshot, error) {
	rows := []ParticleRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return &Snapshot{Particles: rows}, nil
}
