// Package scoring holds the confidence model used to cross-check player
// submitted site scores. It is a small k-nearest-neighbors regressor trained
// at startup from the pipeline catalog: features are standardized, the
// training target is a synthetic confidence derived from site age and
// capacity, and predictions average the k closest sites weighted by inverse
// distance.
package scoring

import (
	"errors"
	"math"
	"sort"
)

const (
	defaultNeighbors = 3
	baseYear         = 2025
)

var ErrNotEnoughData = errors.New("scoring: not enough training sites")

type Features struct {
	Lat      float64
	Lon      float64
	Capacity float64
	Year     int
}

type Model struct {
	k       int
	mean    [4]float64
	scale   [4]float64
	points  [][4]float64
	targets []float64
}

func featureVector(f Features) [4]float64 {
	return [4]float64{f.Lat, f.Lon, f.Capacity, float64(f.Year)}
}

// Train fits the regressor over the site catalog.
func Train(sites []Features) (*Model, error) {
	if len(sites) < defaultNeighbors {
		return nil, ErrNotEnoughData
	}

	minYear := sites[0].Year
	maxCapacity := sites[0].Capacity
	for _, s := range sites[1:] {
		if s.Year < minYear {
			minYear = s.Year
		}
		if s.Capacity > maxCapacity {
			maxCapacity = s.Capacity
		}
	}

	m := &Model{
		k:       defaultNeighbors,
		points:  make([][4]float64, len(sites)),
		targets: make([]float64, len(sites)),
	}
	for i, s := range sites {
		m.points[i] = featureVector(s)
		m.targets[i] = syntheticConfidence(s, minYear, maxCapacity)
	}

	m.fitScaler()
	for i := range m.points {
		m.points[i] = m.transform(m.points[i])
	}
	return m, nil
}

// syntheticConfidence mirrors the training target of the reference model:
// older sites and larger capacities score higher, clipped to [0, 1].
func syntheticConfidence(s Features, minYear int, maxCapacity float64) float64 {
	var ageTerm float64
	if span := float64(baseYear - minYear); span > 0 {
		ageTerm = float64(baseYear-s.Year) / span
	}
	var capTerm float64
	if maxCapacity > 0 {
		capTerm = s.Capacity / maxCapacity
	}
	return clip(0.4*ageTerm+0.6*capTerm, 0, 1)
}

func (m *Model) fitScaler() {
	n := float64(len(m.points))
	for _, p := range m.points {
		for j, v := range p {
			m.mean[j] += v / n
		}
	}
	for _, p := range m.points {
		for j, v := range p {
			d := v - m.mean[j]
			m.scale[j] += d * d / n
		}
	}
	for j := range m.scale {
		m.scale[j] = math.Sqrt(m.scale[j])
		if m.scale[j] == 0 {
			m.scale[j] = 1 // constant column
		}
	}
}

func (m *Model) transform(p [4]float64) [4]float64 {
	for j := range p {
		p[j] = (p[j] - m.mean[j]) / m.scale[j]
	}
	return p
}

// Predict returns a confidence in [0, 1], rounded to two decimals.
func (m *Model) Predict(f Features) float64 {
	q := m.transform(featureVector(f))

	type neighbor struct {
		dist   float64
		target float64
	}
	neighbors := make([]neighbor, len(m.points))
	for i, p := range m.points {
		var sum float64
		for j := range p {
			d := p[j] - q[j]
			sum += d * d
		}
		neighbors[i] = neighbor{dist: math.Sqrt(sum), target: m.targets[i]}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	k := m.k
	if k > len(neighbors) {
		k = len(neighbors)
	}
	nearest := neighbors[:k]

	// an exact feature match dominates, matching distance-weighted KNN
	var exactSum float64
	exact := 0
	for _, n := range nearest {
		if n.dist == 0 {
			exactSum += n.target
			exact++
		}
	}
	if exact > 0 {
		return round2(exactSum / float64(exact))
	}

	var num, den float64
	for _, n := range nearest {
		w := 1 / n.dist
		num += w * n.target
		den += w
	}
	return round2(num / den)
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
