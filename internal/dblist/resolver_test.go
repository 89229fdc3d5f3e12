package dblist_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/wmcs-edits/internal/dblist"
	"github.com/wikimedia/wmcs-edits/internal/domain"
)

func file(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func newResolver(files map[string]string) *dblist.Resolver {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[dblist.Path(name)] = file(body)
	}
	return dblist.New(fsys)
}

func TestResolve_Literals(t *testing.T) {
	r := newResolver(map[string]string{
		"all": "# all wikis\nenwiki\n\ndewiki   # German\n  frwiki  \n\r\n#commented\n",
	})

	got, err := r.Resolve("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"dewiki", "enwiki", "frwiki"}, got.Sorted())
}

func TestResolve_DuplicatesCollapse(t *testing.T) {
	r := newResolver(map[string]string{
		"s1": "enwiki\nenwiki\n",
	})

	got, err := r.Resolve("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestResolve_UnionAndDifference(t *testing.T) {
	files := map[string]string{
		"a":     "w1\nw2\n",
		"b":     "w2\nw3\n",
		"union": "%% + b a\n",
		"diff":  "%% - b a\n",
	}
	r := newResolver(files)

	a, err := r.Resolve("a")
	require.NoError(t, err)
	b, err := r.Resolve("b")
	require.NoError(t, err)

	union, err := r.Resolve("union")
	require.NoError(t, err)
	assert.True(t, union.Equal(a.Union(b)), "union = %v", union.Sorted())

	diff, err := r.Resolve("diff")
	require.NoError(t, err)
	assert.True(t, diff.Equal(a.Difference(b)), "diff = %v", diff.Sorted())
	assert.Equal(t, []string{"w1"}, diff.Sorted())
}

func TestResolve_ReductionOrder(t *testing.T) {
	// Start from the last token, then apply pairs left to right.
	// (x - y) + y = x ∪ y while (x + y) - y = x \ y.
	r := newResolver(map[string]string{
		"x":          "w1\nw2\n",
		"y":          "w2\nw3\n",
		"minus_plus": "%% - y + y x\n",
		"plus_minus": "%% + y - y x\n",
	})

	got, err := r.Resolve("minus_plus")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2", "w3"}, got.Sorted())

	got, err = r.Resolve("plus_minus")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, got.Sorted())
}

func TestResolve_ExpressionMarkerTrimming(t *testing.T) {
	r := newResolver(map[string]string{
		"all":    "w1\nw2\nw3\n",
		"closed": "w2\n",
		"open":   "%%%  - closed   all %% # trailing comment\n",
	})

	got, err := r.Resolve("open")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w3"}, got.Sorted())
}

func TestResolve_ExpressionReplacesEarlierLiterals(t *testing.T) {
	r := newResolver(map[string]string{
		"base":  "w1\n",
		"mixed": "w9\n%% base\nw5\n",
	})

	got, err := r.Resolve("mixed")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w5"}, got.Sorted())
}

func TestResolve_NestedExpressions(t *testing.T) {
	r := newResolver(map[string]string{
		"all":     "w1\nw2\nw3\nw4\n",
		"closed":  "w2\n",
		"private": "w3\n",
		"open":    "%% - closed all\n",
		"public":  "%% - private open\n",
	})

	got, err := r.Resolve("public")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w4"}, got.Sorted())
}

func TestResolve_NotFound(t *testing.T) {
	r := newResolver(map[string]string{
		"broken": "%% + missing all\n",
		"all":    "w1\n",
	})

	_, err := r.Resolve("nope")
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)

	_, err = r.Resolve("broken")
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestResolve_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		set   string
	}{
		{"self reference", map[string]string{"loop": "%% + w loop\n", "w": "w1\n"}, "loop"},
		{"self base", map[string]string{"loop": "%% loop\n"}, "loop"},
		{"mutual", map[string]string{"a": "%% b\n", "b": "%% - x a\n", "x": "w1\n"}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(tt.files)
			_, err := r.Resolve(tt.set)
			assert.ErrorIs(t, err, domain.ErrConfigCycle)
		})
	}
}

func TestResolve_InvalidExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", "%%\n"},
		{"unknown operator", "%% & a b\n"},
		{"infix", "%% a - b\n"},
		{"dangling", "%% + a - b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(map[string]string{
				"a":    "w1\n",
				"b":    "w2\n",
				"expr": tt.expr,
			})
			_, err := r.Resolve("expr")
			assert.ErrorIs(t, err, domain.ErrInvalidExpression)
		})
	}
}

func TestResolve_InvalidName(t *testing.T) {
	r := newResolver(map[string]string{"all": "w1\n"})

	_, err := r.Resolve("../all")
	assert.ErrorIs(t, err, domain.ErrConfigFormat)
}

func TestResolve_Idempotent(t *testing.T) {
	r := newResolver(map[string]string{
		"all":    "w1\nw2\n",
		"closed": "w2\n",
		"open":   "%% - closed all\n",
	})

	first, err := r.Resolve("open")
	require.NoError(t, err)

	// Mutating a returned set must not leak into later resolutions.
	first.Add("intruder")

	second, err := r.Resolve("open")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, second.Sorted())

	third, err := newResolver(map[string]string{
		"all":    "w1\nw2\n",
		"closed": "w2\n",
		"open":   "%% - closed all\n",
	}).Resolve("open")
	require.NoError(t, err)
	assert.True(t, second.Equal(third))
}

func TestOpenWikis(t *testing.T) {
	r := newResolver(map[string]string{
		"all":     "w1\nw2\nw3\n",
		"closed":  "w2\n",
		"private": "w3\n",
	})

	got, err := dblist.OpenWikis(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, got.Sorted())
}

func TestOpenWikis_MissingList(t *testing.T) {
	r := newResolver(map[string]string{
		"all":    "w1\n",
		"closed": "",
	})

	_, err := dblist.OpenWikis(r)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestOpenWikis_EmptyListFile(t *testing.T) {
	r := newResolver(map[string]string{
		"all":     "w1\nw2\n",
		"closed":  "",
		"private": "# none\n",
	})

	got, err := dblist.OpenWikis(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, got.Sorted())
}
