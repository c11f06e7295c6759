package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/spagbol-team/spagbol/partition"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVectors generates random vectors with values in range [0, 1).
func (r *RNG) UniformVectors(num int, dimensions int) []partition.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]partition.Vector, num)
	for i := range vectors {
		vec := make(partition.Vector, dimensions)
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}
	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) []partition.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gaussianLocked(num, dimensions)
}

func (r *RNG) gaussianLocked(num int, dimensions int) []partition.Vector {
	vectors := make([]partition.Vector, num)
	for i := range vectors {
		vec := make(partition.Vector, dimensions)
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}
	return vectors
}

// UnitVectors generates L2-normalized random vectors.
func (r *RNG) UnitVectors(num int, dimensions int) []partition.Vector {
	vectors := r.GaussianVectors(num, dimensions)
	for _, vec := range vectors {
		norm := vek32.Norm(vec)
		if norm == 0 {
			vec[0], norm = 1, 1
		}
		vek32.MulNumber_Inplace(vec, 1/norm)
	}
	return vectors
}

// ClusteredVectors generates vectors around random unit centroids.
// Vector i belongs to cluster i % clusters.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) []partition.Vector {
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]partition.Vector, num)
	for i := range vectors {
		centroid := centroids[i%clusters]
		vec := make(partition.Vector, dim)
		for j := range vec {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}
	return vectors
}

// PlaneVectors generates num points lying exactly on a random 2-D affine
// plane in dim dimensions. It returns the points, the plane's origin and two
// orthonormal directions spanning it.
func (r *RNG) PlaneVectors(num, dim int) (points []partition.Vector, origin []float64, basis [2][]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := r.gaussianLocked(3, dim)
	origin = toFloat64(raw[0])
	u := normalize(toFloat64(raw[1]))
	v := toFloat64(raw[2])
	// Gram-Schmidt.
	dot := 0.0
	for j := range v {
		dot += u[j] * v[j]
	}
	for j := range v {
		v[j] -= dot * u[j]
	}
	v = normalize(v)
	basis = [2][]float64{u, v}

	points = make([]partition.Vector, num)
	for i := range points {
		a := r.rand.NormFloat64() * 3
		b := r.rand.NormFloat64()
		vec := make(partition.Vector, dim)
		for j := range vec {
			vec[j] = float32(origin[j] + a*u[j] + b*v[j])
		}
		points[i] = vec
	}
	return points, origin, basis
}

// Entries pairs vectors with ids prefix1, prefix2, ... in order.
func Entries(prefix string, vectors []partition.Vector) []partition.Entry {
	out := make([]partition.Entry, len(vectors))
	for i, vec := range vectors {
		out[i] = partition.Entry{ID: fmt.Sprintf("%s%d", prefix, i+1), Vector: vec}
	}
	return out
}

// SentinelEntries returns n entries whose first coordinate is the 1-based
// insertion position k, with a small alternating second coordinate and a
// zero third coordinate.
func SentinelEntries(prefix string, n int) []partition.Entry {
	vectors := make([]partition.Vector, n)
	for i := range vectors {
		k := i + 1
		vectors[i] = partition.Vector{float32(k), float32(k%2) * 0.1, 0}
	}
	return Entries(prefix, vectors)
}

func toFloat64(v partition.Vector) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func normalize(v []float64) []float64 {
	norm := 0.0
	for _, f := range v {
		norm += f * f
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0], norm = 1, 1
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}
