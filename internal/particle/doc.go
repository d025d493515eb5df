// Package particle implements a position-based particle solver for fluids,
// soft bodies and granular matter that can be coupled to a rigid-body world.
//
// A [System] owns every particle and advances them with [System.Solve]. Each
// particle carries a [Flag] bitmask selecting the behaviors it takes part in:
//
//   - [WaterParticle]: pressure and damping only
//   - [ViscousParticle]: relative velocity is smoothed between neighbors
//   - [PowderParticle]: repulsion without pressure
//   - [TensileParticle]: surface tension
//   - [SpringParticle]: distance bonds to neighbors present at creation
//   - [ElasticParticle]: shape-matched triangles
//   - [WallParticle]: immovable
//   - [ColorMixingParticle]: colors diffuse between touching particles
//
// Particles may be collected into a [Group], which always occupies a
// contiguous index range. Groups can be rigid (moved as one transform) or
// solid (ejected from other groups by penetration depth).
//
// # Rigid bodies
//
// The solver never integrates rigid bodies itself. It reads them through the
// [World], [Fixture] and [Body] interfaces and pushes momentum back with
// [Body.ApplyLinearImpulse]. Pass a nil World for particle-only scenes.
//
// # Spatial index
//
// Particles are bucketed by a 32-bit tag that packs a one-diameter grid row
// into the high bits and a sub-cell x coordinate into the low bits. Sorting
// by tag lets neighbor search and AABB queries run as a merge over a sorted
// list, at the cost of a finite world extent of roughly 2048 diameters on
// each side of the origin.
package particle
