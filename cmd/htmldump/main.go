// Command htmldump parses HTML files and dumps their node trees.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/Flyclops/htmlstream"
)

// CLI is the root command structure for Kong.
type CLI struct {
	Format            string   `help:"Output format." enum:"tree,json,debug" default:"tree"`
	Casing            string   `help:"Tag name casing." enum:"lower,upper,preserve" default:"lower"`
	IgnoreSelfClosing bool     `help:"Treat /> on non-void elements like >."`
	StripComments     bool     `help:"Drop comment nodes."`
	Watch             bool     `help:"Re-dump whenever a file changes." short:"w"`
	Verbose           bool     `help:"Enable verbose output." short:"v"`
	Paths             []string `arg:"" name:"path" help:"HTML files to parse." type:"existingfile"`
}

func (c *CLI) options() *htmlstream.Options {
	opts := htmlstream.DefaultOptions()
	switch c.Casing {
	case "upper":
		opts.TagNameCasing = htmlstream.TagNameUpper
	case "preserve":
		opts.TagNameCasing = htmlstream.TagNamePreserve
	}
	opts.IgnoreSelfClosingSyntax = c.IgnoreSelfClosing
	opts.StripComments = c.StripComments
	return opts
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("htmldump"),
		kong.Description("Parse HTML files and dump their node trees."),
		kong.UsageOnError(),
	)

	if cli.Verbose {
		htmlstream.SetDebug(true)
	}

	parser := htmlstream.NewParser(cli.options())

	if cli.Watch {
		ctx.FatalIfErrorf(watch(parser, &cli))
		return
	}

	failed := false
	for _, path := range cli.Paths {
		if err := dump(parser, &cli, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// dump parses one file and writes its tree to stdout in the selected
// format.
func dump(parser *htmlstream.Parser, cli *CLI, path string) error {
	result, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	nodes, err := result.ToArray()
	if err != nil {
		return err
	}

	if len(cli.Paths) > 1 || cli.Watch {
		fmt.Printf("== %s\n", path)
	}

	switch cli.Format {
	case "json":
		out, err := json.MarshalIndent(nodes, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "debug":
		fmt.Println(repr.String(nodes, repr.Indent("  ")))
	default:
		for _, node := range nodes {
			printTree(node, 0)
		}
	}
	return nil
}

// printTree renders one node and its children as an indented outline.
func printTree(node htmlstream.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line, col := node.Position()

	switch n := node.(type) {
	case *htmlstream.Element:
		attrs := ""
		for _, a := range n.Attributes {
			attrs += fmt.Sprintf(" %s=%q", a.Name, a.Value)
		}
		fmt.Printf("%s<%s>%s  [%d:%d]\n", indent, n.TagName, attrs, line, col)
		for _, child := range n.Children {
			printTree(child, depth+1)
		}
	case *htmlstream.Text:
		fmt.Printf("%s%q  [%d:%d]\n", indent, n.TextContent, line, col)
	case *htmlstream.Doctype:
		fmt.Printf("%s<!DOCTYPE %s>  [%d:%d]\n", indent, n.DoctypeDeclaration, line, col)
	case *htmlstream.Comment:
		fmt.Printf("%s<!-- %s -->  [%d:%d]\n", indent, n.Comment, line, col)
	}
}
