package engine

import (
	"math"
	"time"

	"github.com/soar/padremap/internal/profile"
	"github.com/soar/padremap/internal/vinput"
)

// mover is a mouse movement slot that is currently held.
type mover struct {
	owner *Control
	dir   profile.Direction
	cfg   profile.Mouse

	ease  easing
	accel deltaAccel
}

// speed modifier held by a MouseMod slot
type speedMod struct {
	factor float64
}

// pointer is the virtual pointer of one controller. It is only touched from
// the controller's tick.
type pointer struct {
	movers []*mover
	mods   []*speedMod

	// cursor mode accumulates sub-pixel motion so that slow speeds still
	// move the cursor
	posX, posY   float64
	sentX, sentY int

	springing bool
	spring    profile.Mouse
	lastX     int
	lastY     int
	anchored  bool
	anchorX   int
	anchorY   int

	screen        vinput.Screen
	width, height int
}

func (p *pointer) addMover(m *mover) {
	p.movers = append(p.movers, m)
}

func (p *pointer) removeMover(m *mover) {
	for i, o := range p.movers {
		if o == m {
			p.movers = append(p.movers[:i], p.movers[i+1:]...)
			return
		}
	}
}

func (p *pointer) addMod(m *speedMod) {
	p.mods = append(p.mods, m)
}

func (p *pointer) removeMod(m *speedMod) {
	for i, o := range p.mods {
		if o == m {
			p.mods = append(p.mods[:i], p.mods[i+1:]...)
			return
		}
	}
}

// factor is the combined effect of every held speed modifier.
func (p *pointer) factor() float64 {
	f := 1.0
	for _, m := range p.mods {
		f *= m.factor
	}
	return f
}

func (p *pointer) screenSize() (int, int) {
	if p.screen != nil {
		if w, h := p.screen.ScreenSize(); w > 0 && h > 0 {
			return w, h
		}
	}
	return p.width, p.height
}

// reset forgets all held movement without touching the cursor.
func (p *pointer) reset() {
	p.movers = nil
	p.mods = nil
	p.posX, p.posY = 0, 0
	p.sentX, p.sentY = 0, 0
	p.springing = false
}

func (p *pointer) update(c *Controller, now, dt time.Duration) {
	factor := p.factor()

	var vx, vy float64
	var sx, sy float64
	var spring profile.Mouse
	springing := false

	for _, m := range p.movers {
		lvl := m.owner.level
		if lvl <= 0 {
			// macro movement after the control was released
			lvl = 1
		}
		dx, dy := m.dir.Vector()

		if m.cfg.Mode == profile.MouseSpring {
			springing = true
			spring = m.cfg
			sx += float64(dx) * lvl
			sy += float64(dy) * lvl
			continue
		}

		f := shape(lvl, m.cfg, &m.ease, now) * m.accel.apply(lvl, m.cfg.ExtraAccel, now, dt)
		vx += float64(dx) * m.cfg.SpeedX * f
		vy += float64(dy) * m.cfg.SpeedY * f
	}

	if vx != 0 || vy != 0 {
		sec := dt.Seconds() * factor
		p.posX += vx * sec
		p.posY += vy * sec
		tx := int(math.Round(p.posX))
		ty := int(math.Round(p.posY))
		if dx, dy := tx-p.sentX, ty-p.sentY; dx != 0 || dy != 0 {
			c.out.moveBy(c, "", dx, dy)
			p.sentX, p.sentY = tx, ty
		}
	} else {
		p.posX, p.posY = 0, 0
		p.sentX, p.sentY = 0, 0
	}

	w, h := p.screenSize()

	if springing {
		if !p.springing && spring.SpringRelative && !p.anchored {
			p.anchorX, p.anchorY = w/2, h/2
			if p.screen != nil {
				if x, y, ok := p.screen.CursorPosition(); ok {
					p.anchorX, p.anchorY = x, y
				}
			}
			p.anchored = true
		}

		cx, cy := w/2, h/2
		if spring.SpringRelative {
			cx, cy = p.anchorX, p.anchorY
		}

		rw, rh := spring.SpringWidth, spring.SpringHeight
		if rw <= 0 {
			rw = w
		}
		if rh <= 0 {
			rh = h
		}

		sx = math.Max(-1, math.Min(1, sx*factor))
		sy = math.Max(-1, math.Min(1, sy*factor))
		tx := clamp(cx+int(math.Round(sx*float64(rw)/2)), 0, w-1)
		ty := clamp(cy+int(math.Round(sy*float64(rh)/2)), 0, h-1)

		if !p.springing || tx != p.lastX || ty != p.lastY {
			c.out.moveTo(c, "", tx, ty)
			p.lastX, p.lastY = tx, ty
		}
		p.springing = true
		p.spring = spring
		return
	}

	if p.springing {
		p.springing = false
		if p.spring.SpringRelative {
			p.anchorX, p.anchorY = p.lastX, p.lastY
		} else {
			c.out.moveTo(c, "", w/2, h/2)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
