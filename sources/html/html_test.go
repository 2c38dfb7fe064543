package html

import (
	"context"
	"strings"
	"testing"

	"github.com/darianmavgo/geoingest/sources"
	"github.com/stretchr/testify/require"
)

const page = `
<html>
<body>
<table id="fountains">
<tr><th>Description</th><th>Lat</th><th>Lon</th></tr>
<tr><td>Drinking <b>fountain</b></td><td>-37.81</td><td>144.96</td></tr>
<tr><td>  Dog bowl  </td><td>-37.82</td><td></td></tr>
</table>
<table id="toilets">
<tr><th>Name</th></tr>
<tr><td>Block A</td></tr>
</table>
</body>
</html>
`

type scanned struct {
	line   int
	values []string
}

func scanAll(t *testing.T, s sources.RowSource) []scanned {
	t.Helper()
	var out []scanned
	require.NoError(t, s.ScanRows(context.Background(), func(line int, values []string) error {
		out = append(out, scanned{line: line, values: values})
		return nil
	}))
	return out
}

func TestSource_FirstTable(t *testing.T) {
	s, err := NewSource(strings.NewReader(page), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Description", "Lat", "Lon"}, s.Headers())
	require.Equal(t, []scanned{
		{line: 2, values: []string{"Drinking fountain", "-37.81", "144.96"}},
		{line: 3, values: []string{"Dog bowl", "-37.82", ""}},
	}, scanAll(t, s))
}

func TestSource_TableByID(t *testing.T) {
	s, err := sources.Open("html", strings.NewReader(page), &sources.Options{Sheet: "toilets"})
	require.NoError(t, err)
	require.Equal(t, []string{"Name"}, s.Headers())
	require.Equal(t, []scanned{{line: 2, values: []string{"Block A"}}}, scanAll(t, s))
}

func TestSource_Errors(t *testing.T) {
	_, err := NewSource(strings.NewReader("<html><body><p>no tables</p></body></html>"), nil)
	require.ErrorContains(t, err, "no tables")

	_, err = NewSource(strings.NewReader(page), &sources.Options{Sheet: "missing"})
	require.ErrorContains(t, err, "not found")
}

func TestSource_HeaderOnly(t *testing.T) {
	s, err := NewSource(strings.NewReader("<table><tr><th>a</th></tr></table>"), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, s.Headers())
	require.Empty(t, scanAll(t, s))
}
