// Package dblist resolves named sets of wiki databases ("dblists") from the
// MediaWiki configuration tree.
//
// A dblist file holds one database name per line. Text after '#' is a
// comment. A line starting with "%%" is a set expression: the last token
// names the base set and the tokens before it are read front to back as
// (operator, operand) pairs, where '+' adds the operand set and '-' removes
// it. For example "%% - closed - private all" resolves to all minus closed
// minus private.
package dblist

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/validation"
)

const exprMarker = "%%"

// SetResolver resolves a named set to its entries.
type SetResolver interface {
	Resolve(name string) (Set, error)
}

// Resolver reads dblist files from a filesystem rooted at the MediaWiki
// configuration directory. Resolved sets are cached for the lifetime of the
// Resolver. It is not safe for concurrent use.
type Resolver struct {
	fsys  fs.FS
	cache map[string]Set
}

// Ensure Resolver implements SetResolver.
var _ SetResolver = (*Resolver)(nil)

// New creates a Resolver over fsys.
func New(fsys fs.FS) *Resolver {
	return &Resolver{
		fsys:  fsys,
		cache: make(map[string]Set),
	}
}

// Path returns the location of a named set inside the configuration tree.
func Path(name string) string {
	return path.Join("dblists", name+".dblist")
}

// Resolve returns the entries of the named set. The returned set is owned by
// the caller.
func (r *Resolver) Resolve(name string) (Set, error) {
	s, err := r.resolve(name, nil)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func (r *Resolver) resolve(name string, chain []string) (Set, error) {
	if s, ok := r.cache[name]; ok {
		return s, nil
	}
	for _, n := range chain {
		if n == name {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigCycle, strings.Join(append(chain, name), " -> "))
		}
	}
	if err := validation.ValidateSetName(name); err != nil {
		return nil, fmt.Errorf("dblist: %w", err)
	}

	p := Path(name)
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, p)
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	chain = append(chain, name)
	entries := NewSet()
	for _, line := range strings.Split(string(data), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, exprMarker) {
			// An expression replaces whatever the file listed before it.
			entries, err = r.eval(line, chain)
			if err != nil {
				return nil, err
			}
			continue
		}
		entries.Add(line)
	}

	r.cache[name] = entries
	return entries, nil
}

// eval evaluates a set expression line. The result never aliases a cached set.
func (r *Resolver) eval(line string, chain []string) (Set, error) {
	terms := strings.Fields(strings.Trim(line, "% "))
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: %q in %s has no base set", domain.ErrInvalidExpression, line, chain[len(chain)-1])
	}

	last := len(terms) - 1
	base, err := r.resolve(terms[last], chain)
	if err != nil {
		return nil, err
	}
	result := base.Clone()

	pairs := terms[:last]
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: %q in %s has a dangling term %q", domain.ErrInvalidExpression, line, chain[len(chain)-1], pairs[len(pairs)-1])
	}
	for i := 0; i < len(pairs); i += 2 {
		op, operand := pairs[i], pairs[i+1]
		if op != "+" && op != "-" {
			return nil, fmt.Errorf("%w: %q in %s: unknown operator %q", domain.ErrInvalidExpression, line, chain[len(chain)-1], op)
		}
		s, err := r.resolve(operand, chain)
		if err != nil {
			return nil, err
		}
		if op == "+" {
			result = result.Union(s)
		} else {
			result = result.Difference(s)
		}
	}
	return result, nil
}

// OpenWikis returns the public open wikis: all minus closed minus private.
func OpenWikis(r SetResolver) (Set, error) {
	all, err := r.Resolve("all")
	if err != nil {
		return nil, err
	}
	closed, err := r.Resolve("closed")
	if err != nil {
		return nil, err
	}
	private, err := r.Resolve("private")
	if err != nil {
		return nil, err
	}
	return all.Difference(closed).Difference(private), nil
}
