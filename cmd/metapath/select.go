package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/midbel/cli"
	"github.com/midbel/metapath/loader"
	"github.com/midbel/metapath/metapath"
	"github.com/midbel/metapath/node"
)

var selectCmd = cli.Command{
	Name:    "select",
	Summary: "select nodes of a yaml document",
	Handler: &SelectCmd{},
}

var dumpCmd = cli.Command{
	Name:    "dump",
	Summary: "print the expression tree used by select",
	Handler: &DumpCmd{},
}

type SelectCmd struct {
	Trace bool
	Text  bool
	Count bool
	Quiet bool
	Kebab bool
}

const selectInfo = "select took %s - %d items matching %s"

func (s *SelectCmd) Run(args []string) error {
	set := flag.NewFlagSet("select", flag.ContinueOnError)
	set.BoolVar(&s.Trace, "trace", false, "trace function calls on stderr")
	set.BoolVar(&s.Text, "text", false, "print only the value of the selected items")
	set.BoolVar(&s.Count, "count", false, "print only the number of selected items")
	set.BoolVar(&s.Quiet, "quiet", false, "suppress the summary line")
	set.BoolVar(&s.Kebab, "kebab", false, "rewrite keys of the documents to kebab case")
	if err := set.Parse(args); err != nil {
		return err
	}
	expr, err := buildQuery(set.Args()[min(1, set.NArg()):])
	if err != nil {
		return err
	}
	var (
		file    = set.Arg(0)
		options = []metapath.Option{
			metapath.WithLoader(loader.YAML{Dir: filepath.Dir(file), Kebab: s.Kebab}),
		}
	)
	if s.Trace {
		options = append(options, metapath.WithTracer(metapath.TraceWriter(os.Stderr)))
	}
	doc, err := loader.ParseFile(file, parseOptions(s.Kebab)...)
	if err != nil {
		return err
	}
	now := time.Now()
	ctx := metapath.NewDynamicContext(nil, options...)
	results, err := metapath.Find(expr, ctx, doc)
	if err != nil {
		return err
	}
	elapsed := time.Since(now)
	switch {
	case s.Count:
		fmt.Fprintln(os.Stdout, results.Len())
	case s.Text:
		if err := printValues(os.Stdout, results); err != nil {
			return err
		}
	default:
		if err := printItems(os.Stdout, results); err != nil {
			return err
		}
	}
	if !s.Quiet {
		fmt.Fprintln(os.Stderr, mutedStyle.Render(fmt.Sprintf(selectInfo, elapsed, results.Len(), metapath.Debug(expr))))
	}
	if results.IsEmpty() {
		return errFail
	}
	return nil
}

func printValues(w io.Writer, results metapath.Sequence) error {
	for item := range results.All() {
		str, err := metapath.StringValue(item)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, valueStyle.Render(str))
	}
	return nil
}

func printItems(w io.Writer, results metapath.Sequence) error {
	for item := range results.All() {
		n, ok := item.(metapath.NodeItem)
		if ok {
			fmt.Fprintln(w, nameStyle.Render(node.Path(n.Node())))
			continue
		}
		str, err := metapath.StringValue(item)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, valueStyle.Render(str))
	}
	return nil
}

type DumpCmd struct{}

func (d *DumpCmd) Run(args []string) error {
	set := flag.NewFlagSet("dump", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	expr, err := buildQuery(set.Args())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, metapath.Debug(expr))
	return nil
}
