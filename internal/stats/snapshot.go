package stats

// Row is one Name/Value entry of a snapshot.
type Row struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot is the result of one refresh cycle: parallel name and value
// sequences of equal length. A published snapshot is never mutated.
type Snapshot struct {
	names  []string
	values []string
}

// NewSnapshot builds a snapshot from rows in the given order.
func NewSnapshot(rows ...Row) Snapshot {
	s := Snapshot{
		names:  make([]string, 0, len(rows)),
		values: make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		s.add(r.Name, r.Value)
	}
	return s
}

func (s *Snapshot) add(name, value string) {
	s.names = append(s.names, name)
	s.values = append(s.values, value)
}

// Len returns the number of rows.
func (s Snapshot) Len() int {
	return len(s.names)
}

// Row returns row i. It panics when i is out of range.
func (s Snapshot) Row(i int) Row {
	return Row{Name: s.names[i], Value: s.values[i]}
}

// Rows returns a copy of all rows.
func (s Snapshot) Rows() []Row {
	out := make([]Row, len(s.names))
	for i := range s.names {
		out[i] = s.Row(i)
	}
	return out
}
