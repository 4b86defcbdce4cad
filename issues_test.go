package htmlstream

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.

func TestIssues(t *testing.T) { TestingT(t) }

type IssueTestSuite struct{}

var _ = Suite(&IssueTestSuite{})

func (s *IssueTestSuite) parse(c *C, input string, opts *Options) []Node {
	result, err := NewParser(opts).ParseString(input)
	c.Assert(err, IsNil)
	nodes, err := result.ToArray()
	c.Assert(err, IsNil)
	return nodes
}

func (s *IssueTestSuite) TestEqualsWithoutValue(c *C) {
	// "<a b=>" used to be ambiguous; the attribute gets an empty value
	// and the tag still closes.
	nodes := s.parse(c, "<a b=></a>", nil)
	c.Assert(nodes, HasLen, 1)
	el := nodes[0].(*Element)
	c.Assert(el.Attributes, HasLen, 1)
	c.Check(el.Attributes[0].Name, Equals, "b")
	c.Check(el.Attributes[0].Value, Equals, "")
	c.Check(el.Children, HasLen, 0)
}

func (s *IssueTestSuite) TestWhitespaceBeforeTagEnd(c *C) {
	nodes := s.parse(c, "<div   >x</div>", nil)
	c.Assert(nodes, HasLen, 1)
	el := nodes[0].(*Element)
	c.Check(el.TagName, Equals, "div")
	c.Assert(el.Children, HasLen, 1)
	c.Check(el.Children[0].(*Text).TextContent, Equals, "x")
}

func (s *IssueTestSuite) TestSlashSeparatedFromTagEnd(c *C) {
	// The '/' still self-closes across intervening whitespace.
	nodes := s.parse(c, "<div /  >x", nil)
	c.Assert(nodes, HasLen, 2)
	c.Check(nodes[0].(*Element).Children, HasLen, 0)
	c.Check(nodes[1].(*Text).TextContent, Equals, "x")
}

func (s *IssueTestSuite) TestRawElementLongerTagName(c *C) {
	// "</scripts>" must not terminate a script element.
	nodes := s.parse(c, "<script>a</scripts>b</script>", nil)
	c.Assert(nodes, HasLen, 1)
	el := nodes[0].(*Element)
	c.Assert(el.Children, HasLen, 1)
	c.Check(el.Children[0].(*Text).TextContent, Equals, "a</scripts>b")
}

func (s *IssueTestSuite) TestUnderscoreLeadingTagName(c *C) {
	nodes := s.parse(c, "<_x></_x>", nil)
	c.Assert(nodes, HasLen, 1)
	c.Check(nodes[0].(*Element).TagName, Equals, "_x")
}
