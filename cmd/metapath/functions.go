package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/metapath/metapath"
)

var functionsCmd = cli.Command{
	Name:    "functions",
	Alias:   []string{"fn"},
	Summary: "list the signatures of the available functions",
	Handler: &FunctionsCmd{},
}

type FunctionsCmd struct {
	Prefix string
	Name   string
}

func (f *FunctionsCmd) Run(args []string) error {
	set := flag.NewFlagSet("functions", flag.ContinueOnError)
	set.StringVar(&f.Prefix, "ns", "", "only list functions bound to the given namespace prefix")
	set.StringVar(&f.Name, "name", "", "only list functions whose local name contains the given text")
	if err := set.Parse(args); err != nil {
		return err
	}
	list, err := f.filter(metapath.DefaultStaticContext())
	if err != nil {
		return err
	}
	for _, fn := range list {
		fmt.Fprintln(os.Stdout, describe(fn))
	}
	if len(list) == 0 {
		return errFail
	}
	return nil
}

func (f *FunctionsCmd) filter(static *metapath.StaticContext) ([]*metapath.Function, error) {
	var space string
	if f.Prefix != "" {
		uri, ok := static.Namespace(f.Prefix)
		if !ok {
			return nil, fmt.Errorf("%s: unknown namespace prefix", f.Prefix)
		}
		space = uri
	}
	var list []*metapath.Function
	for _, fn := range static.Library().Functions() {
		if space != "" && fn.Name.Space != space {
			continue
		}
		if f.Name != "" && !strings.Contains(fn.Name.Name, f.Name) {
			continue
		}
		list = append(list, fn)
	}
	return list, nil
}

func describe(fn *metapath.Function) string {
	var marks []string
	if fn.Props.Is(metapath.Deterministic) {
		marks = append(marks, "deterministic")
	}
	if fn.Props.Is(metapath.ContextDependent) {
		marks = append(marks, "context")
	}
	if fn.Props.Is(metapath.FocusDependent) {
		marks = append(marks, "focus")
	}
	str := nameStyle.Render(fn.Signature())
	if len(marks) > 0 {
		str += " " + mutedStyle.Render("["+strings.Join(marks, ", ")+"]")
	}
	return str
}
