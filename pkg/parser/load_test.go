package parser

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// sliceSource serves rows from memory.
type sliceSource struct {
	rows   []*record.Row
	i      int
	closed bool
}

func (s *sliceSource) Next(ctx context.Context) (*record.Row, error) {
	if s.i >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.i]
	s.i++
	return row, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func shiftRow(line int, employee, in, out, hours string) *record.Row {
	return &record.Row{
		Fields: map[string]string{
			"Employee Name":            employee,
			"Time":                     in,
			"Time Out":                 out,
			"Timecard Hours (as Time)": hours,
		},
		Source:  "mem",
		LineNum: line,
	}
}

func TestLoad(t *testing.T) {
	src := &sliceSource{rows: []*record.Row{
		shiftRow(2, "A", "2024-03-01 09:00", "2024-03-01 17:00", "8:00"),
		shiftRow(3, "B", "2024-03-01 10:00", "2024-03-01 18:00", "8"),
	}}

	result, err := Load(context.Background(), src, record.NewConverter(record.DefaultColumns(), nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("Records = %d, want 2", len(result.Records))
	}
	if result.RowsRead != 2 {
		t.Errorf("RowsRead = %d, want 2", result.RowsRead)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "mem" {
		t.Errorf("Sources = %v, want [mem]", result.Sources)
	}
	if result.Records[1].EmployeeID != "B" || result.Records[1].Seq != 1 {
		t.Errorf("Records[1] = %+v", result.Records[1])
	}
}

func TestLoad_ParseErrorPolicy(t *testing.T) {
	rows := func() []*record.Row {
		return []*record.Row{
			shiftRow(2, "A", "2024-03-01 09:00", "2024-03-01 17:00", "8:00"),
			shiftRow(3, "A", "2024-03-02 09:00", "2024-03-02 17:00", "eight"),
			shiftRow(4, "A", "2024-03-03 09:00", "2024-03-03 08:00", "8:00"),
			shiftRow(5, "A", "2024-03-04 09:00", "2024-03-04 17:00", "8:00"),
		}
	}

	t.Run("fail", func(t *testing.T) {
		_, err := Load(context.Background(), &sliceSource{rows: rows()},
			record.NewConverter(record.DefaultColumns(), nil), WithPolicy(PolicyFail))

		var pe *record.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Load() error = %v, want *record.ParseError", err)
		}
		if pe.LineNum != 3 {
			t.Errorf("LineNum = %d, want 3", pe.LineNum)
		}
	})

	t.Run("skip", func(t *testing.T) {
		result, err := Load(context.Background(), &sliceSource{rows: rows()},
			record.NewConverter(record.DefaultColumns(), nil), WithPolicy(PolicySkip))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(result.Records) != 2 {
			t.Errorf("Records = %d, want 2", len(result.Records))
		}
		if len(result.Diagnostics) != 2 {
			t.Fatalf("Diagnostics = %d, want 2", len(result.Diagnostics))
		}
		if result.Diagnostics[0].Field != record.FieldDuration || result.Diagnostics[0].LineNum != 3 {
			t.Errorf("Diagnostics[0] = %+v", result.Diagnostics[0])
		}
		if result.Diagnostics[1].Field != record.FieldClockOut || result.Diagnostics[1].LineNum != 4 {
			t.Errorf("Diagnostics[1] = %+v", result.Diagnostics[1])
		}
		if result.RowsRead != 4 {
			t.Errorf("RowsRead = %d, want 4", result.RowsRead)
		}
	})
}

func TestLoad_SchemaErrorIgnoresPolicy(t *testing.T) {
	src := &sliceSource{rows: []*record.Row{{
		Fields:  map[string]string{"Employee Name": "A", "Time": "2024-03-01 09:00", "Time Out": "2024-03-01 17:00"},
		Source:  "mem",
		LineNum: 2,
	}}}

	result, err := Load(context.Background(), src, record.NewConverter(record.DefaultColumns(), nil), WithPolicy(PolicySkip))

	var se *record.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Load() error = %v, want *record.SchemaError", err)
	}
	if result != nil {
		t.Error("Load() returned records alongside a schema error")
	}
}

func TestLoad_UnknownPolicy(t *testing.T) {
	_, err := Load(context.Background(), &sliceSource{}, record.NewConverter(record.DefaultColumns(), nil), WithPolicy("retry"))
	if err == nil {
		t.Error("Load() expected error for unknown policy")
	}
}

func TestChainSource(t *testing.T) {
	first := &sliceSource{rows: []*record.Row{shiftRow(2, "A", "", "", ""), shiftRow(3, "B", "", "", "")}}
	empty := &sliceSource{}
	last := &sliceSource{rows: []*record.Row{shiftRow(2, "C", "", "", "")}}

	chain := NewChainSource(first, empty, last)
	rows := drain(t, chain)

	var got string
	for _, r := range rows {
		got += r.Fields["Employee Name"]
	}
	if got != "ABC" {
		t.Errorf("order = %q, want ABC", got)
	}

	if err := chain.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !first.closed || !empty.closed || !last.closed {
		t.Error("Close() did not close every source")
	}
}
