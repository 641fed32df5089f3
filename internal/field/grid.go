package field

import (
	"fmt"

	"github.com/san-kum/cosray/internal/vec"
)

// Grid is a tabulated field on a regular cartesian grid with trilinear
// interpolation between nodes. Positions outside the grid volume yield
// ErrOutOfDomain.
type Grid struct {
	origin  vec.Vec3
	spacing float64
	nx, ny, nz int
	data    []vec.Vec3 // x-fastest ordering
}

func NewGrid(origin vec.Vec3, spacing float64, nx, ny, nz int) (*Grid, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("field: grid spacing must be positive, got %g", spacing)
	}
	if nx < 2 || ny < 2 || nz < 2 {
		return nil, fmt.Errorf("field: grid needs at least 2 nodes per axis, got %dx%dx%d", nx, ny, nz)
	}
	return &Grid{
		origin:  origin,
		spacing: spacing,
		nx:      nx, ny: ny, nz: nz,
		data: make([]vec.Vec3, nx*ny*nz),
	}, nil
}

func (g *Grid) index(ix, iy, iz int) int {
	return ix + g.nx*(iy+g.ny*iz)
}

// Set assigns the field vector at a grid node.
func (g *Grid) Set(ix, iy, iz int, b vec.Vec3) {
	g.data[g.index(ix, iy, iz)] = b
}

// Fill assigns the same vector to every node.
func (g *Grid) Fill(b vec.Vec3) {
	for i := range g.data {
		g.data[i] = b
	}
}

func (g *Grid) At(pos vec.Vec3) (vec.Vec3, error) {
	r := pos.Sub(g.origin).Scale(1 / g.spacing)

	if r.X < 0 || r.Y < 0 || r.Z < 0 ||
		r.X > float64(g.nx-1) || r.Y > float64(g.ny-1) || r.Z > float64(g.nz-1) {
		return vec.Zero(), fmt.Errorf("%w: %+v", ErrOutOfDomain, pos)
	}

	ix, fx := cell(r.X, g.nx)
	iy, fy := cell(r.Y, g.ny)
	iz, fz := cell(r.Z, g.nz)

	var b vec.Vec3
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				w := lerpWeight(fx, dx) * lerpWeight(fy, dy) * lerpWeight(fz, dz)
				b = b.Add(g.data[g.index(ix+dx, iy+dy, iz+dz)].Scale(w))
			}
		}
	}
	return b, nil
}

// cell returns the lower node index and the fractional offset within the
// cell, clamped so positions on the upper boundary use the last cell.
func cell(r float64, n int) (int, float64) {
	i := int(r)
	if i > n-2 {
		i = n - 2
	}
	return i, r - float64(i)
}

func lerpWeight(f float64, d int) float64 {
	if d == 0 {
		return 1 - f
	}
	return f
}
