package htmlstream

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParseNodes parses input and materializes the whole tree.
func mustParseNodes(t *testing.T, input string, opts *Options) []Node {
	t.Helper()
	result, err := NewParser(opts).ParseString(input)
	require.NoError(t, err)
	nodes, err := result.ToArray()
	require.NoError(t, err)
	return nodes
}

func requireTree(t *testing.T, want, got []Node) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(Element{})); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSimpleElement(t *testing.T) {
	got := mustParseNodes(t, "<div>Hello, world!</div>", nil)
	want := []Node{
		&Element{
			TagName: "div",
			Children: []Node{
				&Text{TextContent: "Hello, world!", Line: 1, Col: 6},
			},
			Line: 1, Col: 2,
		},
	}
	requireTree(t, want, got)
}

func TestParseTagNameCasing(t *testing.T) {
	t.Run("lower_tolerates_mismatched_casing", func(t *testing.T) {
		got := mustParseNodes(t, "<DIV>hi</Div>", &Options{TagNameCasing: TagNameLower})
		want := []Node{
			&Element{
				TagName: "div",
				Children: []Node{
					&Text{TextContent: "hi", Line: 1, Col: 6},
				},
				Line: 1, Col: 2,
			},
		}
		requireTree(t, want, got)
	})

	t.Run("upper", func(t *testing.T) {
		got := mustParseNodes(t, "<div>hi</div>", &Options{TagNameCasing: TagNameUpper})
		want := []Node{
			&Element{
				TagName: "DIV",
				Children: []Node{
					&Text{TextContent: "hi", Line: 1, Col: 6},
				},
				Line: 1, Col: 2,
			},
		}
		requireTree(t, want, got)
	})

	t.Run("preserve_treats_mismatched_close_as_stray", func(t *testing.T) {
		got := mustParseNodes(t, "<Div></div>hello", &Options{TagNameCasing: TagNamePreserve})
		want := []Node{
			&Element{
				TagName: "Div",
				Children: []Node{
					&Text{TextContent: "hello", Line: 1, Col: 12},
				},
				Line: 1, Col: 2,
			},
		}
		requireTree(t, want, got)
	})
}

func TestParseSelfClosingAndVoid(t *testing.T) {
	got := mustParseNodes(t, "<div/>Hello!<input type=text />after", nil)
	want := []Node{
		&Element{TagName: "div", Line: 1, Col: 2},
		&Text{TextContent: "Hello!", Line: 1, Col: 7},
		&Element{
			TagName: "input",
			Attributes: []*Attribute{
				{Name: "type", Value: "text", Line: 1, Col: 20},
			},
			Line: 1, Col: 14,
		},
		&Text{TextContent: "after", Line: 1, Col: 32},
	}
	requireTree(t, want, got)
}

func TestParseIgnoreSelfClosingSyntax(t *testing.T) {
	input := "<div/>x"

	got := mustParseNodes(t, input, nil)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].(*Element).Children)

	got = mustParseNodes(t, input, &Options{IgnoreSelfClosingSyntax: true})
	want := []Node{
		&Element{
			TagName: "div",
			Children: []Node{
				&Text{TextContent: "x", Line: 1, Col: 7},
			},
			Line: 1, Col: 2,
		},
	}
	requireTree(t, want, got)
}

func TestParseRawTextElement(t *testing.T) {
	got := mustParseNodes(t, "<style>a{content:'</style>'}</style>", nil)
	want := []Node{
		&Element{
			TagName: "style",
			Children: []Node{
				&Text{TextContent: "a{content:'</style>'}", Line: 1, Col: 8},
			},
			Line: 1, Col: 2,
		},
	}
	requireTree(t, want, got)
}

func TestParseDoctype(t *testing.T) {
	got := mustParseNodes(t, "<!DOCTYPE html><html></html>", nil)
	want := []Node{
		&Doctype{DoctypeDeclaration: "html", Line: 1, Col: 1},
		&Element{TagName: "html", Line: 1, Col: 17},
	}
	requireTree(t, want, got)
}

func TestParseComments(t *testing.T) {
	input := "a<!-- note --><b></b>"

	t.Run("preserved_by_default", func(t *testing.T) {
		got := mustParseNodes(t, input, nil)
		want := []Node{
			&Text{TextContent: "a", Line: 1, Col: 1},
			&Comment{Comment: "note", Line: 1, Col: 2},
			&Element{TagName: "b", Line: 1, Col: 16},
		}
		requireTree(t, want, got)
	})

	t.Run("stripped_on_request", func(t *testing.T) {
		got := mustParseNodes(t, input, &Options{StripComments: true})
		want := []Node{
			&Text{TextContent: "a", Line: 1, Col: 1},
			&Element{TagName: "b", Line: 1, Col: 16},
		}
		requireTree(t, want, got)
	})
}

func TestParseStrayAndMismatchedClosers(t *testing.T) {
	t.Run("stray_close_at_root", func(t *testing.T) {
		got := mustParseNodes(t, "</nope>text", nil)
		want := []Node{
			&Text{TextContent: "text", Line: 1, Col: 8},
		}
		requireTree(t, want, got)
	})

	t.Run("close_matches_outer_ancestor", func(t *testing.T) {
		got := mustParseNodes(t, "<a><b><c></a>tail", nil)
		require.Len(t, got, 2)
		a := got[0].(*Element)
		require.Len(t, a.Children, 1)
		b := a.Children[0].(*Element)
		require.Len(t, b.Children, 1)
		c := b.Children[0].(*Element)
		assert.Equal(t, "c", c.TagName)
		assert.Nil(t, c.Children)
		assert.Equal(t, &Text{TextContent: "tail", Line: 1, Col: 14}, got[1])
	})

	t.Run("unclosed_elements_at_eof", func(t *testing.T) {
		got := mustParseNodes(t, "<div><p>x", nil)
		require.Len(t, got, 1)
		div := got[0].(*Element)
		require.Len(t, div.Children, 1)
		p := div.Children[0].(*Element)
		require.Len(t, p.Children, 1)
		assert.Equal(t, &Text{TextContent: "x", Line: 1, Col: 9}, p.Children[0])
	})
}

func TestParseFileUTF16(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "page.html", utf16Bytes("<div>Hi 👋</div>", true, true), 0o644))

	result, err := NewParser(&Options{Fs: fs}).ParseFile("page.html")
	require.NoError(t, err)
	nodes, err := result.ToArray()
	require.NoError(t, err)

	want := []Node{
		&Element{
			TagName: "div",
			Children: []Node{
				&Text{TextContent: "Hi 👋", Line: 1, Col: 6},
			},
			Line: 1, Col: 2,
		},
	}
	requireTree(t, want, nodes)
}

func TestParseFileNotFound(t *testing.T) {
	parser := NewParser(&Options{Fs: afero.NewMemMapFs()})
	_, err := parser.ParseFile("missing.html")
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "io", perr.Sender)
	assert.Equal(t, "missing.html", perr.Filename)
	// The underlying OS error text is preserved verbatim.
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestParseDecodeErrorSurfaces(t *testing.T) {
	result, err := ParseString("ab\xff")
	require.NoError(t, err)
	_, err = result.ToArray()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "decoder", perr.Sender)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 3, perr.Column)
}

func TestStreamingIteration(t *testing.T) {
	result, err := ParseString("<ul><li>one</li><li>two</li></ul>after")
	require.NoError(t, err)
	stream, err := result.Stream()
	require.NoError(t, err)

	require.True(t, stream.Next())
	ul, ok := stream.Node().(*Element)
	require.True(t, ok)
	assert.Equal(t, "ul", ul.TagName)

	children := ul.ChildStream()
	require.NotNil(t, children)

	var texts []string
	for children.Next() {
		li, ok := children.Node().(*Element)
		require.True(t, ok)
		assert.Equal(t, "li", li.TagName)
		lis := li.ChildStream()
		require.NotNil(t, lis)
		for lis.Next() {
			texts = append(texts, lis.Node().(*Text).TextContent)
		}
		require.NoError(t, lis.Err())
	}
	require.NoError(t, children.Err())
	assert.Equal(t, []string{"one", "two"}, texts)

	require.True(t, stream.Next())
	assert.Equal(t, &Text{TextContent: "after", Line: 1, Col: 34}, stream.Node())

	assert.False(t, stream.Next())
	require.NoError(t, stream.Err())
}

func TestAbandonedChildStreamDoesNotStallOuter(t *testing.T) {
	result, err := ParseString("<div><p>deep</p><p>more</p></div><span>tail</span>")
	require.NoError(t, err)
	stream, err := result.Stream()
	require.NoError(t, err)
	defer result.Close()

	require.True(t, stream.Next())
	div := stream.Node().(*Element)
	require.NotNil(t, div.ChildStream())
	// Skip the whole div subtree.
	div.ChildStream().Close()

	require.True(t, stream.Next())
	span := stream.Node().(*Element)
	assert.Equal(t, "span", span.TagName)

	spans := span.ChildStream()
	require.NotNil(t, spans)
	require.True(t, spans.Next())
	assert.Equal(t, "tail", spans.Node().(*Text).TextContent)
	assert.False(t, spans.Next())

	assert.False(t, stream.Next())
	require.NoError(t, stream.Err())
}

func TestMaterializedJSONShape(t *testing.T) {
	t.Run("element_with_children", func(t *testing.T) {
		nodes := mustParseNodes(t, "<div>Hello, world!</div>", nil)
		out, err := json.Marshal(nodes)
		require.NoError(t, err)
		require.JSONEq(t,
			`[{"tagName":"div","children":[{"textContent":"Hello, world!","l":1,"c":6}],"l":1,"c":2}]`,
			string(out))
	})

	t.Run("empty_attributes_and_children_are_elided", func(t *testing.T) {
		nodes := mustParseNodes(t, "<br>", nil)
		out, err := json.Marshal(nodes)
		require.NoError(t, err)
		require.JSONEq(t, `[{"tagName":"br","l":1,"c":2}]`, string(out))
	})

	t.Run("attributes_doctype_comment", func(t *testing.T) {
		nodes := mustParseNodes(t, `<!DOCTYPE html><!--x--><a href="y"></a>`, nil)
		out, err := json.Marshal(nodes)
		require.NoError(t, err)
		require.JSONEq(t,
			`[{"doctypeDeclaration":"html","l":1,"c":1},`+
				`{"comment":"x","l":1,"c":16},`+
				`{"tagName":"a","attributes":[{"name":"href","value":"y","l":1,"c":27}],"l":1,"c":25}]`,
			string(out))
	})
}

// rebuild reconstructs a source string from a materialized tree.
func rebuild(nodes []Node) string {
	out := ""
	for _, node := range nodes {
		switch n := node.(type) {
		case *Element:
			out += "<" + n.TagName
			for _, a := range n.Attributes {
				if a.Value == "" {
					out += " " + a.Name
				} else {
					out += " " + a.Name + `="` + a.Value + `"`
				}
			}
			out += ">"
			if !isVoidElement(n.TagName) {
				out += rebuild(n.Children)
				out += "</" + n.TagName + ">"
			}
		case *Text:
			out += n.TextContent
		case *Doctype:
			out += "<!DOCTYPE " + n.DoctypeDeclaration + ">"
		case *Comment:
			out += "<!-- " + n.Comment + " -->"
		}
	}
	return out
}

// TestRoundTrip re-parses a reconstructed source and expects a tree
// equivalent up to positions.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"<div>Hello, world!</div>",
		"<div/>Hello!<input type=text />after",
		"<!DOCTYPE html><html><body class=main><p>a</p><br><p>b</p></body></html>",
		"<ul><li>one</li><li>two</li></ul>",
	}

	ignorePositions := []cmp.Option{
		cmpopts.IgnoreUnexported(Element{}),
		cmpopts.IgnoreFields(Element{}, "Line", "Col"),
		cmpopts.IgnoreFields(Text{}, "Line", "Col"),
		cmpopts.IgnoreFields(Doctype{}, "Line", "Col"),
		cmpopts.IgnoreFields(Comment{}, "Line", "Col"),
		cmpopts.IgnoreFields(Attribute{}, "Line", "Col"),
	}

	for _, input := range inputs {
		first := mustParseNodes(t, input, nil)
		second := mustParseNodes(t, rebuild(first), nil)
		if diff := cmp.Diff(first, second, ignorePositions...); diff != "" {
			t.Fatalf("round trip of %q not equivalent (-first +second):\n%s", input, diff)
		}
	}
}
