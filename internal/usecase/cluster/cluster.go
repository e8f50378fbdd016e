// Package cluster groups one polarity's fragment embeddings into topics. It
// builds the cosine similarity matrix of the vectors, clusters its rows with
// weighted-average linkage and cuts the dendrogram at a fixed distance.
package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"yt-sentiment/internal/domain/entity"
)

// DefaultThreshold is the reference cut height.
const DefaultThreshold = 0.5

// Partition is the outcome of one clustering run. Groups hold the member
// texts of every multi-member cluster; singletons are pooled in Others.
// Groups are ordered by the position of their first member, members keep
// record order.
type Partition struct {
	Groups [][]string
	// Others pools the members of singleton clusters. Never nil.
	Others []string
}

// Clusterer is a TopicClusterer with a configurable cut threshold.
type Clusterer struct {
	threshold float64
}

// New creates a Clusterer that cuts at threshold.
func New(threshold float64) *Clusterer {
	return &Clusterer{threshold: threshold}
}

// Threshold returns the cut height.
func (c *Clusterer) Threshold() float64 {
	return c.threshold
}

// Cluster partitions records. All vectors must share one dimension.
func (c *Clusterer) Cluster(records []entity.EmbeddingRecord) (Partition, error) {
	p := Partition{Groups: [][]string{}, Others: []string{}}
	switch len(records) {
	case 0:
		return p, nil
	case 1:
		p.Others = append(p.Others, records[0].Text)
		return p, nil
	}

	vectors := make([][]float32, len(records))
	for i, r := range records {
		vectors[i] = r.Vector
	}
	sim, err := CosineSimilarity(vectors)
	if err != nil {
		return Partition{}, err
	}

	labels := CutByDistance(len(records), WeightedLinkage(RowDistances(sim)), c.threshold)

	members := make([][]string, 0)
	for i, l := range labels {
		if l == len(members) {
			members = append(members, nil)
		}
		members[l] = append(members[l], records[i].Text)
	}
	for _, m := range members {
		if len(m) > 1 {
			p.Groups = append(p.Groups, m)
		} else {
			p.Others = append(p.Others, m[0])
		}
	}
	return p, nil
}

// CosineSimilarity returns the n×n cosine similarity matrix of vectors.
// Rows of a zero vector are all zero.
func CosineSimilarity(vectors [][]float32) (*mat.Dense, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("%w: no vectors", entity.ErrInvalidInput)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", entity.ErrInvalidInput)
	}

	unit := mat.NewDense(n, dim, nil)
	row := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", entity.ErrInvalidInput, i, len(v), dim)
		}
		for j, x := range v {
			row[j] = float64(x)
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		unit.SetRow(i, row)
	}

	var sim mat.Dense
	sim.Mul(unit, unit.T())
	return &sim, nil
}

// RowDistances treats every row of m as an observation and returns the
// Euclidean distance matrix between rows.
func RowDistances(m mat.Matrix) [][]float64 {
	n, _ := m.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			dist[i][j], dist[j][i] = d, d
		}
	}
	return dist
}
