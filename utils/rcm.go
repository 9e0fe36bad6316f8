package utils

import (
	"sort"
)

// adjacency returns the symmetrized off-diagonal sparsity graph of A
func adjacency(A CSR) (adj [][]int) {
	adj = make([][]int, A.N)
	seen := make([]map[int]bool, A.N)
	for i := range seen {
		seen[i] = make(map[int]bool)
	}
	link := func(i, j int) {
		if !seen[i][j] {
			seen[i][j] = true
			adj[i] = append(adj[i], j)
		}
	}
	for i := 0; i < A.N; i++ {
		for ii := A.RowPtr[i]; ii < A.RowPtr[i+1]; ii++ {
			if j := A.ColInd[ii]; j != i {
				link(i, j)
				link(j, i)
			}
		}
	}
	return
}

/*
ReverseCuthillMcKee returns a bandwidth reducing permutation of the square matrix A,
perm[new] = old. Each connected component is started from a pseudo-peripheral node.
*/
func ReverseCuthillMcKee(A CSR) (perm []int) {
	var (
		n       = A.N
		adj     = adjacency(A)
		visited = make([]bool, n)
		order   = make([]int, 0, n)
		degree  = func(i int) int { return len(adj[i]) }
	)
	for i := range adj {
		sort.Slice(adj[i], func(a, b int) bool {
			da, db := degree(adj[i][a]), degree(adj[i][b])
			if da != db {
				return da < db
			}
			return adj[i][a] < adj[i][b]
		})
	}
	for {
		start := -1
		for i := 0; i < n; i++ {
			if !visited[i] && (start < 0 || degree(i) < degree(start)) {
				start = i
			}
		}
		if start < 0 {
			break
		}
		start = pseudoPeripheral(adj, start)
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, w := range adj[v] {
				if !visited[w] {
					visited[w] = true
					queue = append(queue, w)
				}
			}
		}
	}
	perm = make([]int, n)
	for i, v := range order {
		perm[n-1-i] = v
	}
	return
}

// pseudoPeripheral walks to the end of successive level structures until the eccentricity stops growing
func pseudoPeripheral(adj [][]int, start int) (node int) {
	node = start
	levels, last := levelStructure(adj, node)
	for iter := 0; iter < 10; iter++ {
		var (
			candidate = last[0]
		)
		for _, v := range last {
			if len(adj[v]) < len(adj[candidate]) {
				candidate = v
			}
		}
		l2, last2 := levelStructure(adj, candidate)
		if l2 <= levels {
			return
		}
		node, levels, last = candidate, l2, last2
	}
	return
}

func levelStructure(adj [][]int, root int) (depth int, lastLevel []int) {
	var (
		dist = map[int]int{root: 0}
		cur  = []int{root}
	)
	for len(cur) > 0 {
		lastLevel = cur
		var next []int
		for _, v := range cur {
			for _, w := range adj[v] {
				if _, ok := dist[w]; !ok {
					dist[w] = depth + 1
					next = append(next, w)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		depth++
		cur = next
	}
	return
}

// Bandwidth returns the lower and upper bandwidth of A after the symmetric permutation perm (perm[new] = old)
func Bandwidth(A CSR, perm []int) (kl, ku int) {
	var (
		inv = make([]int, A.N)
	)
	for newI, oldI := range perm {
		inv[oldI] = newI
	}
	for i := 0; i < A.N; i++ {
		for ii := A.RowPtr[i]; ii < A.RowPtr[i+1]; ii++ {
			d := inv[A.ColInd[ii]] - inv[i]
			if d > ku {
				ku = d
			} else if -d > kl {
				kl = -d
			}
		}
	}
	return
}

// IdentityPermutation is the natural ordering
func IdentityPermutation(n int) (perm []int) {
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return
}
