package align

type op int

const (
	opMatch op = iota
	opChange
	opDelete
	opInsert
)

// step is one position of an sdiff-style script. i indexes a for match,
// change and delete; j indexes b for match, change and insert.
type step struct {
	op   op
	i, j int
}

// sdiff returns the edit script from a to b along a longest common
// subsequence. Within each run of unmatched rows, deletions and insertions
// are paired in order as changes; leftover deletions come before leftover
// insertions. On ties the walk deletes from a before inserting from b.
func sdiff(a, b []string) []step {
	n, m := len(a), len(b)
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []step
	var dels, ins []int
	flush := func() {
		k := min(len(dels), len(ins))
		for x := 0; x < k; x++ {
			out = append(out, step{op: opChange, i: dels[x], j: ins[x]})
		}
		for _, i := range dels[k:] {
			out = append(out, step{op: opDelete, i: i})
		}
		for _, j := range ins[k:] {
			out = append(out, step{op: opInsert, j: j})
		}
		dels, ins = dels[:0], ins[:0]
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			flush()
			out = append(out, step{op: opMatch, i: i, j: j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			dels = append(dels, i)
			i++
		default:
			ins = append(ins, j)
			j++
		}
	}
	for ; i < n; i++ {
		dels = append(dels, i)
	}
	for ; j < m; j++ {
		ins = append(ins, j)
	}
	flush()
	return out
}
