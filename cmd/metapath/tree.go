package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/metapath/loader"
	"github.com/midbel/metapath/node"
)

var treeCmd = cli.Command{
	Name:    "tree",
	Summary: "print the node tree built from a yaml document",
	Handler: &TreeCmd{},
}

type TreeCmd struct {
	Depth int
	Kebab bool
}

func (t *TreeCmd) Run(args []string) error {
	set := flag.NewFlagSet("tree", flag.ContinueOnError)
	set.IntVar(&t.Depth, "depth", 0, "maximum depth to print, 0 prints the whole tree")
	set.BoolVar(&t.Kebab, "kebab", false, "rewrite keys of the document to kebab case")
	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := loader.ParseFile(set.Arg(0), parseOptions(t.Kebab)...)
	if err != nil {
		return err
	}
	printTree(os.Stdout, doc.Root(), 0, t.Depth)
	return nil
}

func printTree(w io.Writer, n node.Node, level, depth int) {
	if n == nil || (depth > 0 && level >= depth) {
		return
	}
	var str strings.Builder
	str.WriteString(strings.Repeat("  ", level))
	str.WriteString(nameStyle.Render(n.QName().String()))
	for _, f := range n.Flags() {
		str.WriteString(" ")
		str.WriteString(flagStyle.Render("@" + f.QName().String()))
		str.WriteString("=")
		str.WriteString(valueStyle.Render(node.StringValue(f)))
	}
	if n.Type() == node.TypeField {
		str.WriteString(" ")
		str.WriteString(valueStyle.Render(fmt.Sprintf("%q", node.StringValue(n))))
	}
	if n.Cyclic() {
		str.WriteString(" ")
		str.WriteString(markStyle.Render("(cyclic)"))
	}
	fmt.Fprintln(w, str.String())
	for _, c := range n.Children() {
		printTree(w, c, level+1, depth)
	}
}

func parseOptions(kebab bool) []loader.Option {
	if !kebab {
		return nil
	}
	return []loader.Option{loader.WithKebabNames()}
}
