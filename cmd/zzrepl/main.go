package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/chzyer/readline"
	"github.com/npillmayer/lexgen/config"
	"github.com/npillmayer/lexgen/emit"
	"github.com/npillmayer/lexgen/scanner"
	"github.com/npillmayer/lexgen/tables"
	"github.com/pterm/pterm"
)

type cli struct {
	Trace   string   `help:"Trace level [Debug|Info|Error]" default:"Info"`
	Config  string   `help:"YAML file with generator and scanner options" type:"existingfile"`
	Tables  string   `help:"Load a saved table set instead of building the demo scanner" type:"existingfile"`
	Save    string   `help:"Save the table set to a file"`
	HTML    string   `name:"html" help:"Write the transition table as HTML to a file"`
	GoSrc   string   `name:"gosrc" help:"Write Go source for the table set to a file"`
	Package string   `help:"Package name for Go source" default:"lexer"`
	Prefix  string   `help:"Identifier prefix for Go source"`
	Dump    bool     `help:"Print the table set"`
	Input   []string `arg:"" optional:"" help:"Input to scan. Without input, zzrepl starts in interactive mode."`
}

// main() starts an interactive CLI ("ZZ.REPL"), where users may enter lines of
// input for a scanner. ZZ.REPL will scan every line and print out the tokens.
// ZZ.REPL is intended as a sandbox for experiments with scanner tables.
func main() {
	var params cli
	kong.Parse(&params,
		kong.Name("zzrepl"),
		kong.Description("Scan input with generated scanner tables."))
	initDisplay()
	setTraceLevel(params.Trace)
	pterm.Info.Println("Welcome to ZZ.REPL")
	tracer().Infof("Trace level is %s", params.Trace)
	//
	opts := config.Default()
	if params.Config != "" {
		var err error
		if opts, err = config.Load(params.Config); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
	}
	ts, err := loadTables(params, opts)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	if err = export(params, ts); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	if params.Dump {
		pterm.Println(ts.String())
	}
	t, err := scanner.Load(ts)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	intp := &Intp{tables: ts, scanTables: t, opts: opts}
	if len(params.Input) > 0 {
		intp.Scan(strings.Join(params.Input, " "))
		return
	}
	//
	// set up REPL
	repl, err := readline.New("zz> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp.repl = repl
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func loadTables(params cli, opts config.Options) (*tables.TableSet, error) {
	if params.Tables == "" {
		return makeDemoTables(opts)
	}
	f, err := os.Open(params.Tables)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ts, err := tables.ReadTableSet(f)
	if err != nil {
		return nil, fmt.Errorf("loading tables from %s: %w", params.Tables, err)
	}
	tracer().Infof("loaded %d states from %s", ts.NumStates, params.Tables)
	return ts, nil
}

// export writes the table set to the files requested on the command line.
func export(params cli, ts *tables.TableSet) error {
	if params.Save != "" {
		var buf bytes.Buffer
		if _, err := ts.WriteTo(&buf); err != nil {
			return err
		}
		if err := os.WriteFile(params.Save, buf.Bytes(), 0o644); err != nil {
			return err
		}
		tracer().Infof("table set saved to %s", params.Save)
	}
	if params.HTML != "" {
		var buf bytes.Buffer
		if err := tables.TransitionTableAsHTML(ts, &buf); err != nil {
			return err
		}
		if err := os.WriteFile(params.HTML, buf.Bytes(), 0o644); err != nil {
			return err
		}
		tracer().Infof("transition table written to %s", params.HTML)
	}
	if params.GoSrc != "" {
		var buf bytes.Buffer
		p := emit.Params{Package: params.Package, Prefix: params.Prefix}
		if err := emit.GoSource(ts, p, &buf); err != nil {
			return err
		}
		if err := os.WriteFile(params.GoSrc, buf.Bytes(), 0o644); err != nil {
			return err
		}
		tracer().Infof("Go source written to %s", params.GoSrc)
	}
	return nil
}

// Intp is our interpreter object
type Intp struct {
	tables     *tables.TableSet
	scanTables *scanner.Tables
	opts       config.Options
	repl       *readline.Instance
}

// REPL starts interactive mode. Lines starting with ':' are commands:
//
//  :tables   print the table set
//  :config   print the options
//  :quit     leave ZZ.REPL
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := intp.Command(line[1:]); quit {
				break
			}
			continue
		}
		intp.Scan(line)
	}
	println("Good bye!")
}

// Command executes a REPL command and returns true if the REPL should quit.
func (intp *Intp) Command(cmd string) bool {
	switch cmd {
	case "quit", "q":
		return true
	case "tables":
		pterm.Println(intp.tables.String())
	case "config":
		y, err := intp.opts.YAML()
		if err != nil {
			pterm.Error.Println(err.Error())
			break
		}
		pterm.Println(string(y))
	default:
		pterm.Error.Printf("unknown command :%s\n", cmd)
	}
	return false
}

// Scan scans a line of input and prints a table of tokens.
func (intp *Intp) Scan(line string) {
	rows, errs := scanInput(intp.scanTables, intp.opts, strings.NewReader(line))
	data := pterm.TableData{{"Pos", "Len", "State", "Label", "Action", "Text"}}
	for _, r := range rows {
		data = append(data, []string{r.Position, strconv.FormatUint(r.Bytes, 10), r.State, r.Label, r.Payload, r.Text})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, err := range errs {
		pterm.Error.Println(err.Error())
	}
}
