package particle

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// voronoiDiagram rasterizes the Voronoi regions of a point set on a grid and
// reads the dual triangulation back from adjacent cells.
type voronoiDiagram struct {
	generators []voronoiGenerator
	countX     int
	countY     int
	// cells holds a generator index per grid cell, -1 when unassigned.
	cells []int
}

type voronoiGenerator struct {
	center    Vec
	tag       int
	necessary bool
}

type voronoiTask struct {
	x, y, cell, generator int
}

func newVoronoiDiagram(capacity int) *voronoiDiagram {
	return &voronoiDiagram{generators: make([]voronoiGenerator, 0, capacity)}
}

func (d *voronoiDiagram) addGenerator(center Vec, tag int, necessary bool) {
	d.generators = append(d.generators, voronoiGenerator{center: center, tag: tag, necessary: necessary})
}

// generate assigns every cell to its nearest generator. radius is the cell
// size and margin pads the grid around the necessary generators.
func (d *voronoiDiagram) generate(radius, margin float64) {
	inv := 1 / radius
	bounds := emptyAABB()
	for _, g := range d.generators {
		if g.necessary {
			bounds = bounds.Include(g.center)
		}
	}
	if !bounds.Valid() {
		d.countX, d.countY, d.cells = 0, 0, nil
		return
	}
	bounds = bounds.Expand(margin)
	d.countX = 1 + int(inv*(bounds.Upper.X-bounds.Lower.X))
	d.countY = 1 + int(inv*(bounds.Upper.Y-bounds.Lower.Y))
	d.cells = make([]int, d.countX*d.countY)
	for i := range d.cells {
		d.cells[i] = -1
	}

	queue := make([]voronoiTask, 0, len(d.cells))
	for k := range d.generators {
		g := &d.generators[k]
		g.center = r2.Scale(inv, r2.Sub(g.center, bounds.Lower))
		x, y := int(g.center.X), int(g.center.Y)
		if x >= 0 && y >= 0 && x < d.countX && y < d.countY {
			queue = append(queue, voronoiTask{x: x, y: y, cell: x + y*d.countX, generator: k})
		}
	}
	queue = d.flood(queue)

	// Refine: any cell whose neighbor belongs to a different generator is
	// re-seeded so the flood can settle ties by distance.
	queue = queue[:0]
	for y := 0; y < d.countY; y++ {
		for x := 0; x < d.countX-1; x++ {
			i := x + y*d.countX
			a, b := d.cells[i], d.cells[i+1]
			if a != b {
				queue = append(queue, voronoiTask{x, y, i, b}, voronoiTask{x + 1, y, i + 1, a})
			}
		}
	}
	for y := 0; y < d.countY-1; y++ {
		for x := 0; x < d.countX; x++ {
			i := x + y*d.countX
			a, b := d.cells[i], d.cells[i+d.countX]
			if a != b {
				queue = append(queue, voronoiTask{x, y, i, b}, voronoiTask{x, y + 1, i + d.countX, a})
			}
		}
	}
	d.flood(queue)
}

// flood drains queue breadth-first, claiming each visited cell for the task's
// generator when it is nearer than the current owner.
func (d *voronoiDiagram) flood(queue []voronoiTask) []voronoiTask {
	for head := 0; head < len(queue); head++ {
		t := queue[head]
		if t.generator < 0 {
			continue
		}
		g := d.generators[t.generator]
		if owner := d.cells[t.cell]; owner != t.generator {
			if owner >= 0 && distanceToCell(d.generators[owner].center, t.x, t.y) <= distanceToCell(g.center, t.x, t.y) {
				continue
			}
			d.cells[t.cell] = t.generator
			if t.x > 0 {
				queue = append(queue, voronoiTask{t.x - 1, t.y, t.cell - 1, t.generator})
			}
			if t.y > 0 {
				queue = append(queue, voronoiTask{t.x, t.y - 1, t.cell - d.countX, t.generator})
			}
			if t.x < d.countX-1 {
				queue = append(queue, voronoiTask{t.x + 1, t.y, t.cell + 1, t.generator})
			}
			if t.y < d.countY-1 {
				queue = append(queue, voronoiTask{t.x, t.y + 1, t.cell + d.countX, t.generator})
			}
		}
	}
	return queue
}

func distanceToCell(center Vec, x, y int) float64 {
	dx, dy := center.X-float64(x), center.Y-float64(y)
	return dx*dx + dy*dy
}

// nodes calls fn with the tags of every triangle formed by three regions
// meeting at a grid vertex, skipping triangles with no necessary member.
func (d *voronoiDiagram) nodes(fn func(a, b, c int)) {
	necessary := func(k int) bool { return d.generators[k].necessary }
	tag := func(k int) int { return d.generators[k].tag }
	for y := 0; y < d.countY-1; y++ {
		for x := 0; x < d.countX-1; x++ {
			i := x + y*d.countX
			a, b := d.cells[i], d.cells[i+1]
			c, e := d.cells[i+d.countX], d.cells[i+1+d.countX]
			if a < 0 || b < 0 || c < 0 || e < 0 || b == c {
				continue
			}
			if a != b && a != c && (necessary(a) || necessary(b) || necessary(c)) {
				fn(tag(a), tag(b), tag(c))
			}
			if e != b && e != c && (necessary(b) || necessary(e) || necessary(c)) {
				fn(tag(b), tag(e), tag(c))
			}
		}
	}
}
