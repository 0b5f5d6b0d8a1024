/*
package flowfly generates synthetic collision events with a known azimuthal
anisotropy and measures that anisotropy against the generated reaction plane.
*/
package flowfly

// Particle is a single track of an event. Tags are assigned by the generator
// when the particle is added to its Event and are not changed afterwards.
type Particle struct {
	Pt, Eta, Phi float64
	Charge       int

	RP, POI bool // Reference particle and particle of interest tags.
}

// Event is the set of particles kept from one generated collision.
type Event struct {
	Particles []Particle

	// RefMult is the sampled multiplicity. It can exceed Mult() when the
	// efficiency or acceptance filters rejected particles.
	RefMult int

	// TrueAngle is the generated reaction plane and Angle is the smeared
	// angle which analyses are meant to use.
	TrueAngle, Angle float64

	NumRPs, NumPOIs int
}

// Mult returns the number of particles kept in the event.
func (e *Event) Mult() int { return len(e.Particles) }

// Add appends a particle to the event and updates the tag counts.
func (e *Event) Add(p Particle) {
	if p.RP {
		e.NumRPs++
	}
	if p.POI {
		e.NumPOIs++
	}
	e.Particles = append(e.Particles, p)
}
