package tables

import (
	"fmt"
	"html"
	"io"
)

// TransitionTableAsHTML exports the reduced transition table of a table set
// in HTML format, one row per state.
func TransitionTableAsHTML(ts *TableSet, w io.Writer) error {
	if ts == nil {
		tracer().Errorf("table set not yet created, cannot export to HTML")
		return fmt.Errorf("no table set")
	}
	trans, err := ts.Trans.Unpack()
	if err != nil {
		return err
	}
	rowmap, err := ts.RowMap.Unpack()
	if err != nil {
		return err
	}
	actions, err := ts.Action.Unpack()
	if err != nil {
		return err
	}
	attrs, err := ts.Attribute.Unpack()
	if err != nil {
		return err
	}
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, fmt.Sprintf("TRANS table of %d states × %d columns, %d units packed<p>\n",
		ts.NumStates, ts.NumCols, ts.Units()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td><td>action</td><td>attr</td>\n")
	for c := 0; c < ts.NumCols; c++ {
		io.WriteString(w, fmt.Sprintf("<td>col %d</td>", c))
	}
	io.WriteString(w, "</tr>\n")
	var td string // table cell
	for s := 0; s < ts.NumStates; s++ {
		io.WriteString(w, fmt.Sprintf("<tr><td>state %d</td>", s))
		if actions[s] == 0 {
			td = "&nbsp;"
		} else {
			td = fmt.Sprintf("%d", actions[s])
		}
		io.WriteString(w, fmt.Sprintf("<td>%s</td><td>%s</td>\n", td, attrString(attrs[s])))
		for c := 0; c < ts.NumCols; c++ {
			if t := trans[rowmap[s]+c]; t < 0 {
				td = "&nbsp;"
			} else {
				td = fmt.Sprintf("%d", t)
			}
			io.WriteString(w, fmt.Sprintf("<td>%s</td>", td))
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table><p>\n")
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td>label</td><td>action</td><td>lookahead</td></tr>\n")
	for _, a := range ts.Actions {
		io.WriteString(w, fmt.Sprintf("<tr><td>%d</td><td><code>%s</code></td><td>%s</td></tr>\n",
			a.Label, html.EscapeString(a.Payload), a.Kind))
	}
	_, err = io.WriteString(w, "</table></body></html>\n")
	return err
}

func attrString(attr int) string {
	s := ""
	if attr&AttrFinal != 0 {
		s += "F"
	}
	if attr&AttrNoLook != 0 {
		s += "N"
	}
	if s == "" {
		return "&nbsp;"
	}
	return s
}
