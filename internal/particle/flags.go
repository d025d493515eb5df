package particle

import (
	"fmt"
	"strings"
)

// Flag selects the behaviors a particle takes part in. Flags combine freely.
type Flag uint32

const (
	WaterParticle Flag = 0
	// ZombieParticle marks a particle for removal at the end of the step.
	ZombieParticle Flag = 1 << 1
	// WallParticle has zero velocity and never moves.
	WallParticle Flag = 1 << 2
	// SpringParticle is bonded pairwise to its neighbors at creation.
	SpringParticle Flag = 1 << 3
	// ElasticParticle is bonded in triangles that resist deformation.
	ElasticParticle Flag = 1 << 4
	ViscousParticle Flag = 1 << 5
	PowderParticle  Flag = 1 << 6
	TensileParticle Flag = 1 << 7
	// ColorMixingParticle exchanges color with touching mixing particles.
	ColorMixingParticle Flag = 1 << 8
	// DestructionListenerParticle notifies the listener when removed.
	DestructionListenerParticle Flag = 1 << 9
)

const (
	pairFlags  = SpringParticle
	triadFlags = ElasticParticle
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{ZombieParticle, "zombie"},
	{WallParticle, "wall"},
	{SpringParticle, "spring"},
	{ElasticParticle, "elastic"},
	{ViscousParticle, "viscous"},
	{PowderParticle, "powder"},
	{TensileParticle, "tensile"},
	{ColorMixingParticle, "color_mixing"},
	{DestructionListenerParticle, "destruction_listener"},
}

func (f Flag) String() string {
	if f == WaterParticle {
		return "water"
	}
	var names []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseFlags turns names such as "viscous" or "tensile" into a bitmask.
func ParseFlags(names []string) (Flag, error) {
	var f Flag
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "water" {
			continue
		}
		found := false
		for _, n := range flagNames {
			if n.name == name {
				f |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown particle flag: %s", name)
		}
	}
	return f, nil
}

// GroupFlag describes the behavior of a whole group.
type GroupFlag uint32

const (
	// SolidGroup resists penetration by other groups.
	SolidGroup GroupFlag = 1 << iota
	// RigidGroup moves as a single transform.
	RigidGroup
	// GroupCanBeEmpty keeps the group alive after its last particle dies.
	GroupCanBeEmpty

	groupNeedsUpdateDepth
	groupNeedsSplit

	publicGroupFlags = SolidGroup | RigidGroup | GroupCanBeEmpty
)

func (f GroupFlag) String() string {
	var names []string
	if f&SolidGroup != 0 {
		names = append(names, "solid")
	}
	if f&RigidGroup != 0 {
		names = append(names, "rigid")
	}
	if f&GroupCanBeEmpty != 0 {
		names = append(names, "can_be_empty")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
