package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field2D is a seeded, frequency-scaled 2D noise field over world
// coordinates, returning values in [-1, 1].
type Field2D struct {
	noise     opensimplex.Noise
	frequency float64
}

func NewField2D(seed int64, frequency float64) *Field2D {
	return &Field2D{noise: opensimplex.New(seed), frequency: frequency}
}

// At samples the field at a world position.
func (f *Field2D) At(x, z float32) float32 {
	return float32(f.noise.Eval2(float64(x)*f.frequency, float64(z)*f.frequency))
}

// Field3D is the 3D counterpart of Field2D.
type Field3D struct {
	noise     opensimplex.Noise
	frequency float64
}

func NewField3D(seed int64, frequency float64) *Field3D {
	return &Field3D{noise: opensimplex.New(seed), frequency: frequency}
}

// At samples the field at a world position.
func (f *Field3D) At(x, y, z float32) float32 {
	return float32(f.noise.Eval3(float64(x)*f.frequency, float64(y)*f.frequency, float64(z)*f.frequency))
}
