package property

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// NoIndex addresses a whole container instead of one of its elements.
const NoIndex = -1

// Link is one hop of a Chain.
type Link struct {
	Name  string
	Index int

	cached *model.Field
}

// Field returns a link to the whole field name.
func Field(name string) Link {
	return Link{Name: name, Index: NoIndex}
}

// Element returns a link to element index of container field name.
func Element(name string, index int) Link {
	return Link{Name: name, Index: index}
}

// Cached returns the field the link last resolved to, if any.
func (l Link) Cached() *model.Field {
	return l.cached
}

// Equal compares names and indices. Cached fields are ignored.
func (l Link) Equal(other Link) bool {
	return l.Name == other.Name && l.Index == other.Index
}

func (l Link) String() string {
	if l.Index == NoIndex {
		return l.Name
	}

	return l.Name + "[" + strconv.Itoa(l.Index) + "]"
}

// Chain is an ordered path of links from a root object to a value.
type Chain []Link

// Path builds a chain of whole-field links.
func Path(names ...string) Chain {
	chain := make(Chain, len(names))
	for i, name := range names {
		chain[i] = Field(name)
	}

	return chain
}

// Clone copies the chain, cached fields included.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}

	out := make(Chain, len(c))
	copy(out, c)

	return out
}

// Equal compares two chains hop by hop.
func (c Chain) Equal(other Chain) bool {
	if len(c) != len(other) {
		return false
	}

	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}

	return true
}

// IsValid reports whether the chain can be resolved at all.
func (c Chain) IsValid() bool {
	if len(c) == 0 {
		return false
	}

	for _, l := range c {
		if l.Name == "" || l.Index < NoIndex {
			return false
		}
	}

	return true
}

// Last returns the leaf link.
func (c Chain) Last() Link {
	return c[len(c)-1]
}

// HasPrefix reports whether c addresses prefix itself or something inside it. A
// chain pointing at a container prefixes the chains pointing at its elements.
func (c Chain) HasPrefix(prefix Chain) bool {
	if len(prefix) == 0 || len(c) < len(prefix) {
		return false
	}

	head := c[:len(prefix)].Clone()
	if head.Equal(prefix) {
		return true
	}

	head[len(head)-1].Index = NoIndex

	return head.Equal(prefix)
}

// Key returns a string identifying the chain content.
func (c Chain) Key() string {
	return c.String()
}

// String renders the chain as a.b[2].c.
func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}

	return strings.Join(parts, ".")
}

// ParseChain parses the format produced by String.
func ParseChain(s string) (Chain, error) {
	if s == "" {
		return nil, errors.Wrap(ErrInvalidChain, "empty chain")
	}

	parts := strings.Split(s, ".")
	chain := make(Chain, 0, len(parts))

	for _, part := range parts {
		link, err := parseLink(part)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", s)
		}

		chain = append(chain, link)
	}

	return chain, nil
}

func parseLink(part string) (Link, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return Link{}, errors.Wrap(ErrInvalidChain, "empty link")
		}

		return Field(part), nil
	}

	if open == 0 || !strings.HasSuffix(part, "]") {
		return Link{}, errors.Wrapf(ErrInvalidChain, "malformed link %q", part)
	}

	index, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || index < 0 {
		return Link{}, errors.Wrapf(ErrInvalidChain, "malformed index in %q", part)
	}

	return Element(part[:open], index), nil
}
