package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darianmavgo/geoingest/config"
	"github.com/darianmavgo/geoingest/pipeline"
	"github.com/stretchr/testify/require"
)

const fountainsCSV = "Longitude,Latitude,Dog_bowl,Bottle_refill_tap\n" +
	"2.5,1.5,TRUE,FALSE\n" +
	"144.96,-37.81,,TRUE\n"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_SQLite(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "fountains.csv", fountainsCSV)
	dbPath := filepath.Join(dir, "melbourne.db")

	out, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)
	require.Equal(t, successMessage+"\n", out)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fountain`).Scan(&count))
	require.Equal(t, 2, count)

	var wkt string
	var dogBowl sql.NullBool
	require.NoError(t, db.QueryRow(`SELECT coordinates, dog_bowl FROM fountain WHERE id = 2`).Scan(&wkt, &dogBowl))
	require.Equal(t, "POINT(144.96 -37.81)", wkt)
	require.False(t, dogBowl.Valid)
}

func TestRun_SQLScript(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "fountains.csv", fountainsCSV)
	script := filepath.Join(dir, "fountain.sql")

	_, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "sql", "--output", script, "--batch-size", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "CREATE TABLE IF NOT EXISTS `fountain`")
	require.Contains(t, text, "VALUES (ST_GeomFromText('POINT(2.5 1.5)'), TRUE, FALSE);")
	require.Contains(t, text, "VALUES (ST_GeomFromText('POINT(144.96 -37.81)'), NULL, TRUE);")
	require.Equal(t, 2, strings.Count(text, "INSERT INTO"))
	require.True(t, strings.HasSuffix(text, "COMMIT;\n"))
}

func TestRun_MissingReport(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "fountains.csv", fountainsCSV)

	out, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "sql",
		"--output", filepath.Join(dir, "out.sql"), "--missing-report")
	require.NoError(t, err)
	require.Contains(t, out, "Missing values per column:")
	require.Contains(t, out, "Dog_bowl")
	require.True(t, strings.HasSuffix(out, successMessage+"\n"))
}

func TestRun_SQLScriptToStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "fountains.csv", fountainsCSV)

	out, errOut, err := execute(t, "run", "fountain", "--input", input, "--driver", "sql", "--output=-", "--missing-report")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "CREATE TABLE IF NOT EXISTS `fountain`"), out)
	require.True(t, strings.HasSuffix(out, "COMMIT;\n"), out)
	require.NotContains(t, out, "Missing values per column:")
	require.NotContains(t, out, successMessage)

	require.Contains(t, errOut, "Missing values per column:")
	require.Contains(t, errOut, successMessage)
}

func TestRun_StrictBooleans(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "fountains.csv", fountainsCSV+"1,2,Y,TRUE\n")
	dbPath := filepath.Join(dir, "melbourne.db")

	_, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "sqlite", "--sqlite-path", dbPath, "--strict-booleans")
	var formatErr *pipeline.FormatError
	require.ErrorAs(t, err, &formatErr)
	require.ErrorIs(t, err, pipeline.ErrUnknownBoolean)
	require.Equal(t, 4, formatErr.Line)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown dataset", func(t *testing.T) {
		_, _, err := execute(t, "run", "playground")
		require.ErrorContains(t, err, "unknown dataset")
	})

	t.Run("missing input", func(t *testing.T) {
		_, _, err := execute(t, "run", "fountain", "--input", filepath.Join(dir, "absent.csv"), "--driver", "sql")
		var inputErr *pipeline.InputError
		require.ErrorAs(t, err, &inputErr)
	})

	t.Run("missing column", func(t *testing.T) {
		input := writeFile(t, dir, "wrong.csv", "Longitude,Latitude\n1,2\n")
		_, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "sql", "--output", filepath.Join(dir, "x.sql"))
		require.ErrorIs(t, err, pipeline.ErrMissingColumn)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		input := writeFile(t, dir, "fountains.csv", fountainsCSV)
		_, _, err := execute(t, "run", "fountain", "--input", input, "--driver", "oracle")
		require.ErrorContains(t, err, "unsupported driver")
	})

	t.Run("no arguments", func(t *testing.T) {
		_, _, err := execute(t, "run")
		require.Error(t, err)
	})
}

func TestDatasetsCmd(t *testing.T) {
	out, _, err := execute(t, "datasets")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "NAME"))
	require.True(t, strings.HasPrefix(lines[1], "attraction"))
	require.Contains(t, lines[3], "toilet")
	require.Contains(t, lines[3], "26")
	require.Contains(t, lines[3], "false")
}

func TestSchemaCmd(t *testing.T) {
	out, _, err := execute(t, "schema", "fountain")
	require.NoError(t, err)
	require.Equal(t, "CREATE TABLE IF NOT EXISTS `fountain` (\n"+
		"\tid INT AUTO_INCREMENT PRIMARY KEY,\n"+
		"\t`dog_bowl` BOOLEAN,\n"+
		"\t`bottle_refill_tap` BOOLEAN,\n"+
		"\t`coordinates` POINT NOT NULL,\n"+
		"\tSPATIAL INDEX(`coordinates`)\n"+
		");\n", out)

	out, _, err = execute(t, "schema", "fountain", "--dialect", "sqlite")
	require.NoError(t, err)
	require.Contains(t, out, `CREATE INDEX IF NOT EXISTS "idx_fountain_coordinates"`)

	_, _, err = execute(t, "schema", "fountain", "--dialect", "oracle")
	require.Error(t, err)
}

func TestExportConfigAndCustomDataset(t *testing.T) {
	dir := t.TempDir()
	exported := filepath.Join(dir, "geoingest.hcl")

	_, _, err := execute(t, "export-config", exported)
	require.NoError(t, err)

	cfg, err := config.Load(exported)
	require.NoError(t, err)
	require.Len(t, cfg.Datasets, 3)

	cfg.Datasets = append(cfg.Datasets, config.Dataset{
		Name:        "bench",
		Table:       "bench",
		CreateTable: true,
		Columns: []config.Column{
			{Source: "Position", Transform: "split", Fields: []string{"latitude", "longitude"}, Delimiter: ";"},
			{Source: "Material"},
		},
	})
	require.NoError(t, config.Export(exported, cfg))

	input := writeFile(t, dir, "benches.csv", "Position,Material\n\"-37.8;144.9\",timber\n")
	dbPath := filepath.Join(dir, "benches.db")
	out, _, err := execute(t, "--config", exported, "run", "bench", "--input", input, "--driver", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, successMessage)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var wkt, material string
	require.NoError(t, db.QueryRow(`SELECT coordinates, material FROM bench`).Scan(&wkt, &material))
	require.Equal(t, "POINT(144.9 -37.8)", wkt)
	require.Equal(t, "timber", material)
}
