// Package htmlstream implements a streaming HTML parser producing a
// lazy tree of typed nodes.
//
// Input bytes are decoded (BOM-aware, UTF-8/16/32), tokenized by a
// state-machine lexer and folded into a node stream by the tree
// builder. Each element node exposes its body as a lazy child stream,
// so deeply nested documents can be processed incrementally without
// materialising the full tree. Every stage is backpressure-aware:
// producers suspend once the downstream buffer is full.
//
// A tiny example with in-memory input:
//
//	result, err := htmlstream.ParseString("<div>Hello, world!</div>")
//	if err != nil {
//	    panic(err)
//	}
//	nodes, err := result.ToArray()
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(nodes[0]) // Output: <Element div attrs=0 Line=1 Col=2>
//
// Streaming consumption walks the node streams instead:
//
//	result, _ := htmlstream.ParseFile("page.html")
//	stream, _ := result.Stream()
//	for stream.Next() {
//	    if el, ok := stream.Node().(*htmlstream.Element); ok && el.ChildStream() != nil {
//	        // iterate el.ChildStream() recursively, or Close() it to skip
//	    }
//	}
//
// The parser tolerates malformed input: stray closing tags are
// ignored, unclosed elements have their streams closed at end of
// input, and truncated documents parse to the prefix that was present.
// Only byte-level decode failures and I/O failures surface as errors.
package htmlstream
