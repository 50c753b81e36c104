package imageproc

import (
	"math"
	"math/rand"
)

// AugmentPolicy bounds the random geometric transforms applied to training
// batches. Shifts, shear and zoom are fractions; rotation is in degrees.
type AugmentPolicy struct {
	Rotation       float64
	WidthShift     float64
	HeightShift    float64
	Shear          float64
	Zoom           float64
	HorizontalFlip bool
}

// Augmenter draws randomized transforms from a policy. It is applied per
// sample while batches are assembled, never baked into the stored dataset.
type Augmenter struct {
	policy AugmentPolicy
	rng    *rand.Rand
}

// NewAugmenter creates an augmenter with a seeded random source so a training
// run is reproducible.
func NewAugmenter(policy AugmentPolicy, seed int64) *Augmenter {
	return &Augmenter{
		policy: policy,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// uniform returns a random value in [-limit, limit].
func (a *Augmenter) uniform(limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return (a.rng.Float64()*2 - 1) * limit
}

// Apply returns an augmented copy of t. The source tensor is not modified.
// Pixels mapped from outside the source are filled with the nearest edge
// value.
func (a *Augmenter) Apply(t *Tensor) *Tensor {
	theta := a.uniform(a.policy.Rotation) * math.Pi / 180
	shear := a.uniform(a.policy.Shear)
	zoom := 1 + a.uniform(a.policy.Zoom)
	tx := a.uniform(a.policy.WidthShift) * float64(t.Width)
	ty := a.uniform(a.policy.HeightShift) * float64(t.Height)
	flip := a.policy.HorizontalFlip && a.rng.Intn(2) == 1

	// Forward transform about the image center: rotate, shear, zoom.
	sin, cos := math.Sincos(theta)
	m00 := zoom * cos
	m01 := zoom * (shear*cos - sin)
	m10 := zoom * sin
	m11 := zoom * (shear*sin + cos)

	det := m00*m11 - m01*m10
	if det == 0 {
		det = 1e-12
	}
	i00 := m11 / det
	i01 := -m01 / det
	i10 := -m10 / det
	i11 := m00 / det

	cx := float64(t.Width-1) / 2
	cy := float64(t.Height-1) / 2

	out := NewTensor(t.Width, t.Height, t.Channels)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			// Map the output pixel back into the source image.
			dx := float64(x) - cx - tx
			dy := float64(y) - cy - ty
			sx := i00*dx + i01*dy + cx
			sy := i10*dx + i11*dy + cy

			if flip {
				sx = float64(t.Width-1) - sx
			}

			// Nearest-neighbor sample with edge extension.
			ix := clamp(int(math.Round(sx)), 0, t.Width-1)
			iy := clamp(int(math.Round(sy)), 0, t.Height-1)

			for c := 0; c < t.Channels; c++ {
				out.Set(c, y, x, t.At(c, iy, ix))
			}
		}
	}

	return out
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
