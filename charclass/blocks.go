package charclass

// Blocks enumerates the contiguous blocks of codepoints in [0…max] for which
// valueOf returns the same value. Codepoints with a negative value are not
// part of any block. Blocks never extend over the surrogate hole: the hole is
// skipped, but blocks on either side of it are not merged.
func Blocks(max rune, valueOf func(rune) int) []ClassInterval {
	var blocks []ClassInterval
	cur := ClassInterval{Class: -1}
	flush := func() {
		if cur.Class >= 0 {
			blocks = append(blocks, cur)
		}
		cur = ClassInterval{Class: -1}
	}
	for r := rune(0); r <= max; r++ {
		if r == SurrogateLo {
			flush()
			r = SurrogateHi
			continue
		}
		v := valueOf(r)
		if v == cur.Class && v >= 0 {
			cur.End = r
			continue
		}
		flush()
		if v >= 0 {
			cur = ClassInterval{Interval: Interval{Start: r, End: r}, Class: v}
		}
	}
	flush()
	return blocks
}

// Columns maps the classes of a partition to columns and merges adjacent
// intervals mapped to the same column. As with Blocks, intervals on either
// side of the surrogate hole are never merged. colOf must be total on the
// classes of p.
func (p *Partition) Columns(colOf func(class int) int) []ClassInterval {
	var cols []ClassInterval
	for _, iv := range p.intervals {
		col := colOf(iv.Class)
		n := len(cols)
		if n > 0 && cols[n-1].Class == col && cols[n-1].End+1 == iv.Start {
			cols[n-1].End = iv.End
			continue
		}
		cols = append(cols, ClassInterval{Interval: iv.Interval, Class: col})
	}
	return cols
}
