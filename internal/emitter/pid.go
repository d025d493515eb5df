package emitter

import "github.com/san-kum/liquidsim/internal/particle"

// PID turns the error between a target and a measurement into a control
// signal. Update is called once per step with that step's duration.
type PID struct {
	Kp, Ki, Kd float64
	Target     float64

	integral float64
	lastErr  float64
	primed   bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Target: target}
}

// Update returns the control for measured after dt has elapsed. The first
// call has no derivative term.
func (p *PID) Update(measured, dt float64) float64 {
	e := p.Target - measured
	var de float64
	if p.primed && dt > 0 {
		de = (e - p.lastErr) / dt
	}
	if dt > 0 {
		p.integral += e * dt
	}
	p.lastErr = e
	p.primed = true
	return p.Kp*e + p.Ki*p.integral + p.Kd*de
}

// Unwind removes the last dt of integral. Regulated calls it while the
// output is clamped so the integral does not wind up.
func (p *PID) Unwind(dt float64) {
	p.integral -= p.lastErr * dt
}

func (p *PID) Reset() {
	p.integral, p.lastErr, p.primed = 0, 0, false
}

// Regulated sets an emitter's rate each step to hold the live particle count
// near a target. Scenes that drain or destroy particles use it to keep a
// steady supply.
type Regulated struct {
	Emitter *Radial
	PID     *PID
	MaxRate float64
}

func NewRegulated(e *Radial, target int, maxRate float64) *Regulated {
	return &Regulated{
		Emitter: e,
		PID:     NewPID(4, 0.5, 0, float64(target)),
		MaxRate: maxRate,
	}
}

func (r *Regulated) Emit(s *particle.System, dt float64) int {
	rate := r.PID.Update(float64(s.Count()), dt)
	if rate < 0 || rate > r.MaxRate {
		r.PID.Unwind(dt)
	}
	r.Emitter.Rate = min(max(rate, 0), r.MaxRate)
	return r.Emitter.Emit(s, dt)
}
