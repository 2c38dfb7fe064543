package pipeline

import (
	"context"
	"errors"
)

type mockSource struct {
	headers []string
	rows    [][]string
	scanErr error
}

func (m *mockSource) Headers() []string { return m.headers }

func (m *mockSource) ScanRows(ctx context.Context, yield func(int, []string) error) error {
	for i, row := range m.rows {
		if err := yield(i+2, row); err != nil {
			return err
		}
	}
	return m.scanErr
}

type mockSink struct {
	created     int
	batches     [][]Record
	commits     int
	closed      int
	createErr   error
	insertErr   error
	failOnBatch int // 1-based; 0 never fails
	commitErr   error
	onInsert    func()
}

func (m *mockSink) CreateTable(ctx context.Context, schema *TargetSchema) error {
	m.created++
	return m.createErr
}

func (m *mockSink) InsertBatch(ctx context.Context, schema *TargetSchema, records []Record) error {
	if m.onInsert != nil {
		m.onInsert()
	}
	if m.insertErr != nil && len(m.batches)+1 == m.failOnBatch {
		return m.insertErr
	}
	batch := make([]Record, len(records))
	copy(batch, records)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockSink) Commit(ctx context.Context) error {
	m.commits++
	return m.commitErr
}

func (m *mockSink) Close() error {
	m.closed++
	return nil
}

func (m *mockSink) inserted() []Record {
	var all []Record
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

var errTest = errors.New("oh noes")

func attractionDefinition() Definition {
	return Definition{
		Name:  "attraction",
		Input: "attraction.csv",
		Columns: []ColumnSpec{
			{Source: "Name", Fields: []string{"name"}, Transform: TransformText},
			{Source: "Introduction", Fields: []string{"introduction"}, Transform: TransformText},
			{Source: "Picture", Fields: []string{"picture"}, Transform: TransformText},
			{Source: "Location", Fields: []string{"latitude", "longitude"}, Transform: TransformSplit},
		},
		Schema: TargetSchema{
			Table: "attraction",
			Fields: []Field{
				{Name: "name", SQLType: "VARCHAR(255)"},
				{Name: "introduction", SQLType: "TEXT"},
				{Name: "picture", SQLType: "VARCHAR(255)"},
			},
			Geometry: GeometryField{Name: "coordinates", Longitude: "longitude", Latitude: "latitude"},
		},
		CreateTable: true,
	}
}

func toiletDefinition() Definition {
	return Definition{
		Name: "toilet",
		Columns: []ColumnSpec{
			{Source: "Longitude", Fields: []string{"longitude"}, Transform: TransformFloat},
			{Source: "Latitude", Fields: []string{"latitude"}, Transform: TransformFloat},
			{Source: "Name", Fields: []string{"name"}, Transform: TransformText},
			{Source: "Parking", Fields: []string{"parking"}, Transform: TransformBool},
			{Source: "ParkingAccessible", Fields: []string{"parking_accessible"}, Transform: TransformBool},
		},
		Schema: TargetSchema{
			Table: "toilet",
			Fields: []Field{
				{Name: "name", SQLType: "VARCHAR(255)"},
				{Name: "parking", SQLType: "BOOLEAN"},
				{Name: "parking_accessible", SQLType: "BOOLEAN"},
			},
			Geometry: GeometryField{Name: "coordinates", Longitude: "longitude", Latitude: "latitude"},
		},
	}
}
