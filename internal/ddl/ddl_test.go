package ddl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dataco/internal/frame"
)

func TestFromFrame(t *testing.T) {
	t.Parallel()

	mapType := func(t frame.Type) string { return strings.ToUpper(t.String()) }
	f := &frame.Frame{
		Columns: []string{"Order_Id", "Sales", "Market"},
		Types:   []frame.Type{frame.Int, frame.Float, frame.String},
	}

	tests := []struct {
		name        string
		table       string
		f           *frame.Frame
		want        TableDef
		errContains string
	}{
		{
			name:  "columns in frame order",
			table: "dataco",
			f:     f,
			want: TableDef{Name: "dataco", Columns: []ColumnDef{
				{Name: "Order_Id", SQLType: "INT", Nullable: true},
				{Name: "Sales", SQLType: "FLOAT", Nullable: true},
				{Name: "Market", SQLType: "STRING", Nullable: true},
			}},
		},
		{name: "empty table name", table: " ", f: f, errContains: "table name must not be empty"},
		{name: "no columns", table: "t", f: frame.New(nil), errContains: "at least one column"},
		{name: "blank column", table: "t", f: frame.New([]string{"a", ""}), errContains: "empty name"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromFrame(tt.table, tt.f, mapType)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err = %v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromFrame: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("TableDef mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
