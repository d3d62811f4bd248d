package units

import (
	"fmt"
	"sort"
	"strings"

	"wholecell/internal/ndarray"
)

// StructArray is a labeled numeric table: an underlying array whose rows are
// records, plus per-field units. Its identity for comparison purposes is only
// the pair (array, units); any other state is ignored.
type StructArray struct {
	Array *ndarray.Array
	Units map[string]Unit
}

func NewStructArray(array *ndarray.Array, fieldUnits map[string]Unit) *StructArray {
	return &StructArray{Array: array, Units: fieldUnits}
}

// Rows is the record count (the leading dimension).
func (s *StructArray) Rows() int {
	if s.Array == nil || len(s.Array.Shape) == 0 {
		return 0
	}
	return s.Array.Shape[0]
}

// RowBytes estimates the storage of one record from the underlying array.
func (s *StructArray) RowBytes() int {
	rows := s.Rows()
	if rows == 0 {
		return 0
	}
	return s.Array.NBytes() / rows
}

func (s *StructArray) String() string {
	fields := make([]string, 0, len(s.Units))
	for name := range s.Units {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fmt.Sprintf("StructArray(%s fields=[%s])", s.Array.Summary(), strings.Join(fields, " "))
}
