package automaton

import (
	"fmt"
	"io"
	"strings"
)

// recordEscaper escapes text for a field of a Graphviz record label.
var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, "\n", `\n`,
	`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// quoteEscaper escapes text for a quoted Dot string.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// ToGraphViz exports the automaton in Graphviz Dot format. Edges are labeled
// with the character classes leading to their target.
func (a *Automaton) ToGraphViz(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for s := range a.Table {
		label := ""
		if a.Actions[s] != nil {
			label = recordEscaper.Replace(a.Actions[s].Payload)
		}
		b.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s, a.nodecolor(s), s, label))
	}
	for i, e := range a.EntryStates {
		b.WriteString(fmt.Sprintf("e%d [shape=plaintext label=\"%s\"]\ne%d -> s%03d [style=dashed]\n",
			i, quoteEscaper.Replace(a.entryName(i)), i, e))
	}
	for s, row := range a.Table {
		classes := make(map[int32][]string)
		var targets []int32
		for c, t := range row {
			if t == NoTarget {
				continue
			}
			if _, ok := classes[t]; !ok {
				targets = append(targets, t)
			}
			classes[t] = append(classes[t], fmt.Sprintf("%d", c))
		}
		for _, t := range targets {
			b.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n", s, t,
				strings.Join(classes[t], ",")))
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (a *Automaton) nodecolor(s int) string {
	if a.Actions[s] != nil {
		return "lightgray"
	}
	if a.Final[s] {
		return "lightblue"
	}
	return "white"
}

func (a *Automaton) entryName(i int) string {
	L := a.NumLexStates()
	if i < 2*L {
		name := a.LexStates.Names()[i/2]
		if i%2 == 1 {
			return "^" + name
		}
		return name
	}
	if (i-2*L)%2 == 1 {
		return fmt.Sprintf("look %d ←", (i-2*L)/2)
	}
	return fmt.Sprintf("look %d →", (i-2*L)/2)
}
