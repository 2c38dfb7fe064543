package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/darianmavgo/geoingest/sources"
	"github.com/stretchr/testify/require"
)

type scanned struct {
	line   int
	values []string
}

func scanAll(t *testing.T, s *Source) []scanned {
	t.Helper()
	var out []scanned
	err := s.ScanRows(context.Background(), func(line int, values []string) error {
		out = append(out, scanned{line: line, values: values})
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestSource_Basic(t *testing.T) {
	data := "Name,Co-ordinates,ParkingAccessible\n" +
		"Arts Centre,\"=-37.8,144.9\",TRUE\n" +
		"Zoo,\"-37.78,144.95\",\n"

	s, err := NewSource(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Co-ordinates", "ParkingAccessible"}, s.Headers())
	require.Equal(t, ',', s.Delimiter())

	rows := scanAll(t, s)
	require.Equal(t, []scanned{
		{line: 2, values: []string{"Arts Centre", "=-37.8,144.9", "TRUE"}},
		{line: 3, values: []string{"Zoo", "-37.78,144.95", ""}},
	}, rows)
}

func TestSource_ByteOrderMark(t *testing.T) {
	data := "\uFEFFName,Lat\nA,1\n"

	s, err := NewSource(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Lat"}, s.Headers())
}

func TestSource_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		opts  *sources.Options
		delim rune
	}{
		{name: "detected tab", data: "a\tb\n1\t2\n", delim: '\t'},
		{name: "detected semicolon", data: "a;b\n1;2\n", delim: ';'},
		{name: "configured pipe", data: "a|b\n1|2\n", opts: &sources.Options{Delimiter: '|'}, delim: '|'},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSource(strings.NewReader(tc.data), tc.opts)
			require.NoError(t, err)
			require.Equal(t, tc.delim, s.Delimiter())
			require.Equal(t, []string{"a", "b"}, s.Headers())
			require.Equal(t, []scanned{{line: 2, values: []string{"1", "2"}}}, scanAll(t, s))
		})
	}
}

func TestSource_MultilineField(t *testing.T) {
	data := "Name,Note\nA,\"first\nsecond\"\nB,plain\n"

	s, err := NewSource(strings.NewReader(data), nil)
	require.NoError(t, err)

	rows := scanAll(t, s)
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[0].line)
	require.Equal(t, "first\nsecond", rows[0].values[1])
	require.Equal(t, 4, rows[1].line)
}

func TestSource_RaggedRowsPassThrough(t *testing.T) {
	data := "a,b,c\n1\n1,2,3,4\n"

	s, err := NewSource(strings.NewReader(data), nil)
	require.NoError(t, err)

	rows := scanAll(t, s)
	require.Equal(t, []string{"1"}, rows[0].values)
	require.Equal(t, []string{"1", "2", "3", "4"}, rows[1].values)
}

func TestSource_Empty(t *testing.T) {
	s, err := NewSource(strings.NewReader(""), nil)
	require.NoError(t, err)
	require.Empty(t, s.Headers())
	require.Empty(t, scanAll(t, s))
}

func TestSource_ParseError(t *testing.T) {
	data := "a,b\n\"unterminated,1\n"

	s, err := NewSource(strings.NewReader(data), nil)
	require.NoError(t, err)

	err = s.ScanRows(context.Background(), func(int, []string) error { return nil })
	var parseErr *csv.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestSource_YieldErrorStops(t *testing.T) {
	errStop := errors.New("stop")
	s, err := NewSource(strings.NewReader("a\n1\n2\n3\n"), nil)
	require.NoError(t, err)

	calls := 0
	err = s.ScanRows(context.Background(), func(int, []string) error {
		calls++
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 1, calls)
}

func TestSource_ScanTwice(t *testing.T) {
	s, err := NewSource(strings.NewReader("a\n1\n"), nil)
	require.NoError(t, err)
	scanAll(t, s)

	err = s.ScanRows(context.Background(), func(int, []string) error { return nil })
	require.Error(t, err)
}

func TestSource_Cancelled(t *testing.T) {
	s, err := NewSource(strings.NewReader("a\n1\n"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.ScanRows(ctx, func(int, []string) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestDriverRegistered(t *testing.T) {
	src, err := sources.Open("csv", strings.NewReader("x,y\n1,2\n"), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, src.Headers())
}
