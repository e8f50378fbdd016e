package cluster

import "math"

// Merge is one step of the dendrogram. A and B are cluster ids: ids below n
// are original observations, id n+k is the cluster formed by merge k.
type Merge struct {
	A, B int
	// Height is the linkage distance at which A and B were joined.
	Height float64
	// Size is the number of observations in the merged cluster.
	Size int
}

// WeightedLinkage runs agglomerative clustering with weighted-average (WPGMA)
// linkage over a symmetric distance matrix and returns the n-1 merges in order.
// When several pairs share the minimal distance the pair with the lowest
// (i, j) slot is merged first, which keeps the result deterministic.
func WeightedLinkage(dist [][]float64) []Merge {
	n := len(dist)
	if n < 2 {
		return nil
	}

	d := make([][]float64, n)
	for i := range dist {
		d[i] = append([]float64(nil), dist[i]...)
	}

	// slot i holds the current cluster id and size of an active cluster
	ids := make([]int, n)
	sizes := make([]int, n)
	active := make([]bool, n)
	for i := range ids {
		ids[i], sizes[i], active[i] = i, 1, true
	}

	merges := make([]Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}

		a, b := ids[bi], ids[bj]
		if a > b {
			a, b = b, a
		}
		merges = append(merges, Merge{A: a, B: b, Height: best, Size: sizes[bi] + sizes[bj]})

		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			v := (d[bi][k] + d[bj][k]) / 2
			d[bi][k], d[k][bi] = v, v
		}
		ids[bi] = n + step
		sizes[bi] += sizes[bj]
		active[bj] = false
	}

	return merges
}

// CutByDistance flattens a dendrogram over n observations: observations joined
// by merges of height at most threshold share a cluster. Labels are numbered
// from 0 in order of first appearance.
func CutByDistance(n int, merges []Merge, threshold float64) []int {
	parent := make([]int, n+len(merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for k, m := range merges {
		if m.Height > threshold {
			continue
		}
		node := n + k
		parent[find(m.A)] = node
		parent[find(m.B)] = node
	}

	labels := make([]int, n)
	seen := make(map[int]int, n)
	for i := 0; i < n; i++ {
		root := find(i)
		l, ok := seen[root]
		if !ok {
			l = len(seen)
			seen[root] = l
		}
		labels[i] = l
	}
	return labels
}
