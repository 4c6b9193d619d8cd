package diff

// DefaultRefineLimit bounds the combined rune length of a replaced block
// that is refined character by character. The Myers trace grows with the
// square of this value.
const DefaultRefineLimit = 2048

// Runes compares two rune sequences with the Myers algorithm and returns
// ops covering both entirely. Runs of insertions and deletions between
// equal runs are reported as a single Insert, Delete or Replace op.
func Runes(a, b []rune) []Op {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	var ops []Op
	if prefix > 0 {
		ops = append(ops, Op{Kind: Equal, OldEnd: prefix, NewEnd: prefix})
	}
	script := myers(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])
	ops = appendScript(ops, script, prefix)
	if suffix > 0 {
		ops = append(ops, Op{
			Kind:     Equal,
			OldStart: len(a) - suffix,
			OldEnd:   len(a),
			NewStart: len(b) - suffix,
			NewEnd:   len(b),
		})
	}
	return ops
}

type editKind uint8

const (
	editEqual editKind = iota
	editInsert
	editDelete
)

type edit struct {
	kind     editKind
	oldIndex int
	newIndex int
}

// appendScript coalesces an edit script into ops, offsetting indices by
// base.
func appendScript(ops []Op, script []edit, base int) []Op {
	x, y := base, base
	for i := 0; i < len(script); {
		if script[i].kind == editEqual {
			j := i
			for j < len(script) && script[j].kind == editEqual {
				j++
			}
			n := j - i
			ops = append(ops, Op{Kind: Equal, OldStart: x, OldEnd: x + n, NewStart: y, NewEnd: y + n})
			x, y, i = x+n, y+n, j
			continue
		}

		dels, ins := 0, 0
		j := i
		for j < len(script) && script[j].kind != editEqual {
			if script[j].kind == editDelete {
				dels++
			} else {
				ins++
			}
			j++
		}
		kind := Replace
		switch {
		case dels == 0:
			kind = Insert
		case ins == 0:
			kind = Delete
		}
		ops = append(ops, Op{Kind: kind, OldStart: x, OldEnd: x + dels, NewStart: y, NewEnd: y + ins})
		x, y, i = x+dels, y+ins, j
	}
	return ops
}

// myers returns the shortest edit script turning a into b.
func myers(a, b []rune) []edit {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]edit, m)
		for i := range ops {
			ops[i] = edit{kind: editInsert, newIndex: i}
		}
		return ops
	}
	if m == 0 {
		ops := make([]edit, n)
		for i := range ops {
			ops[i] = edit{kind: editDelete, oldIndex: i}
		}
		return ops
	}

	maxD := n + m
	offset := maxD
	v := make([]int, 2*maxD+1)
	var trace [][]int

outer:
	for d := 0; d <= maxD; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				trace = append(trace, append([]int(nil), v...))
				break outer
			}
		}
	}
	return backtrack(trace, n, m, offset)
}

func backtrack(trace [][]int, n, m, offset int) []edit {
	x, y := n, m
	var ops []edit
	for d := len(trace) - 2; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, edit{kind: editEqual, oldIndex: x, newIndex: y})
		}
		if d > 0 {
			if x > prevX {
				x--
				ops = append(ops, edit{kind: editDelete, oldIndex: x})
			} else if y > prevY {
				y--
				ops = append(ops, edit{kind: editInsert, newIndex: y})
			}
		}
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}
