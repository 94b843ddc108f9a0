package guidance

import "math"

// PID is a single-loop controller with a clamped integral.
type PID struct {
	Kp, Ki, Kd float64
	// IntegralLimit bounds the accumulated integral to ±IntegralLimit
	IntegralLimit float64

	integral    float64
	prevError   float64
	initialized bool
}

// NewPID returns a controller with the given gains.
func NewPID(kp, ki, kd, integralLimit float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, IntegralLimit: math.Abs(integralLimit)}
}

// Update feeds one error sample taken dt seconds after the previous one and
// returns the control output. The first call after construction or Reset
// has no derivative term. A non-positive dt contributes neither integral
// nor derivative.
func (p *PID) Update(err, dt float64) float64 {
	if !p.initialized {
		p.prevError = err
		p.initialized = true
	}

	var derivative float64
	if dt > 0 {
		p.integral += err * dt
		p.integral = math.Max(-p.IntegralLimit, math.Min(p.IntegralLimit, p.integral))
		derivative = (err - p.prevError) / dt
	}
	p.prevError = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Integral returns the accumulated integral.
func (p *PID) Integral() float64 { return p.integral }

// Reset clears the integral and the derivative history.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
	p.initialized = false
}
