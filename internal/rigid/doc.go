// Package rigid couples the particle solver to the Box2D port in
// github.com/ByteArena/box2d. It wraps worlds, bodies, fixtures and shapes so
// they satisfy the particle package's interfaces, and adds the signed
// distance queries Box2D itself does not provide.
package rigid
