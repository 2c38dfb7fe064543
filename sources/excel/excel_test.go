package excel

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/darianmavgo/geoingest/sources"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestSource_FirstSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"Attractions": {
			{"Name", "Co-ordinates", "ParkingAccessible"},
			{"Arts Centre", "-37.8,144.9", "TRUE"},
			{"Zoo", "-37.78,144.95"},
		},
		"Other": {{"x"}},
	}, "Attractions", "Other")

	s, err := NewSource(buf, nil)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, "Attractions", s.Sheet())
	require.Equal(t, []string{"Name", "Co-ordinates", "ParkingAccessible"}, s.Headers())

	var lines []int
	var values [][]string
	err = s.ScanRows(context.Background(), func(line int, row []string) error {
		lines = append(lines, line)
		values = append(values, row)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, lines)
	require.Equal(t, []string{"Arts Centre", "-37.8,144.9", "TRUE"}, values[0])
	require.Equal(t, []string{"Zoo", "-37.78,144.95"}, values[1])
}

func TestSource_NamedSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		"A": {{"a"}, {"1"}},
		"B": {{"b"}, {"2"}, {"3"}},
	}, "A", "B")

	s, err := sources.Open("excel", buf, &sources.Options{Sheet: "B"})
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, s.Headers())

	count := 0
	require.NoError(t, s.ScanRows(context.Background(), func(int, []string) error {
		count++
		return nil
	}))
	require.Equal(t, 2, count)
}

func TestSource_UnknownSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{"A": {{"a"}}}, "A")

	_, err := NewSource(buf, &sources.Options{Sheet: "missing"})
	require.ErrorContains(t, err, "not found")
}

func TestSource_NotAWorkbook(t *testing.T) {
	_, err := NewSource(strings.NewReader("a,b\n1,2\n"), nil)
	require.Error(t, err)
}
