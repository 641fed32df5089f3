package viz

import (
	"math"
	"sort"

	"github.com/san-kum/cosray/internal/vec"
)

// Camera projects world coordinates onto the canvas with a simple
// perspective transform. World space is expected to be normalized to roughly
// the unit ball before rendering.
type Camera struct {
	Position         vec.Vec3
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Position: vec.Vec3{Z: 5}, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p vec.Vec3) vec.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts world coordinates to sub-pixel screen coordinates.
// Returns x, y, depth, and whether the point landed on screen.
func (c *Camera) Project(p vec.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	dist := c.Position.Z
	if rot.Z >= dist-0.1 {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type projectedSegment struct {
	x1, y1, x2, y2 int
	depth          float64
}

// RenderTrail draws the polyline through points, depth-sorted back to front,
// and marks the final point with a small blob.
func RenderTrail(c *Canvas, points []vec.Vec3, cam *Camera) {
	if c == nil || cam == nil || len(points) == 0 {
		return
	}
	sw, sh := c.Width*2, c.Height*4

	segs := make([]projectedSegment, 0, len(points))
	for i := 1; i < len(points); i++ {
		x1, y1, d1, v1 := cam.Project(points[i-1], sw, sh)
		x2, y2, d2, v2 := cam.Project(points[i], sw, sh)
		if v1 || v2 {
			segs = append(segs, projectedSegment{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].depth < segs[j].depth })
	for _, s := range segs {
		c.DrawLine(s.x1, s.y1, s.x2, s.y2)
	}

	if x, y, _, ok := cam.Project(points[len(points)-1], sw, sh); ok {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				c.Set(x+dx, y+dy)
			}
		}
	}
}

// RenderAxes draws the coordinate axes from the origin, length l in world
// units.
func RenderAxes(c *Canvas, cam *Camera, l float64) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	origin := vec.Vec3{}
	for _, axis := range []vec.Vec3{{X: l}, {Y: l}, {Z: l}} {
		x1, y1, _, v1 := cam.Project(origin, sw, sh)
		x2, y2, _, v2 := cam.Project(axis, sw, sh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
}
