// Package layout places calendar log entries onto a month grid.
//
// Multi-day entries are stacked in rows so that two entries sharing a row
// never share a day. The packing is a greedy first-fit over entries ordered
// by descending span: long entries claim low rows first and short entries
// fill the gaps. It is not globally optimal, but it is stable, which keeps
// re-renders after a re-fetch from shuffling entries between rows.
package layout

// Span is an inclusive range of day numbers, e.g. days of a month.
type Span struct {
	Start int
	End   int
}

// Len returns End - Start.
func (s Span) Len() int {
	return s.End - s.Start
}

// Pack assigns each span the lowest row index not already occupied on any
// of its days, processing spans in the order given. The result is parallel
// to spans. A span with End < Start is treated as the single day Start.
func Pack(spans []Span) []int {
	rows := make([]int, len(spans))
	occupied := make(map[int][]bool) // day -> row -> taken

	for i, s := range spans {
		if s.End < s.Start {
			s.End = s.Start
		}
		row := 0
		for !rowFree(occupied, s, row) {
			row++
		}
		for d := s.Start; d <= s.End; d++ {
			taken := occupied[d]
			for len(taken) <= row {
				taken = append(taken, false)
			}
			taken[row] = true
			occupied[d] = taken
		}
		rows[i] = row
	}
	return rows
}

func rowFree(occupied map[int][]bool, s Span, row int) bool {
	for d := s.Start; d <= s.End; d++ {
		if taken := occupied[d]; row < len(taken) && taken[row] {
			return false
		}
	}
	return true
}
