package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestProjectAlignsByColumnName(t *testing.T) {
	tbl := Table{
		Columns: []string{"Company", "State"},
		Rows: []Record{
			{"Acme", "New York"},
			{"Globex"},
		},
	}

	got := tbl.Project([]string{"State", "Industry", "Company"})

	want := Table{
		Columns: []string{"State", "Industry", "Company"},
		Rows: []Record{
			{"New York", "", "Acme"},
			{"", "", "Globex"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectRepeatedColumnNames(t *testing.T) {
	tbl := Table{
		Columns: []string{"Company", "", "State", ""},
		Rows:    []Record{{"Acme", "x1", "NY", "y1"}},
	}

	same := tbl.Project(tbl.Columns)
	if diff := cmp.Diff(tbl.Rows, same.Rows); diff != "" {
		t.Fatalf("identity projection changed rows (-want +got):\n%s", diff)
	}

	got := tbl.Project([]string{"", "State", "", "Company"})
	assert.Equal(t, []Record{{"x1", "NY", "y1", "Acme"}}, got.Rows)
}

func TestUnionColumnsKeepsExistingOrder(t *testing.T) {
	got := UnionColumns([]string{"A", "B"}, []string{"C", "B", "D"})
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}

func TestUnionColumnsCountsRepeats(t *testing.T) {
	assert.Equal(t, []string{"A", "", "B", ""}, UnionColumns([]string{"A", "", "B", ""}, []string{"A", "", "B", ""}))
	assert.Equal(t, []string{"A", "", ""}, UnionColumns([]string{"A", ""}, []string{"", "A", ""}))
}

func TestRecordKeyDistinguishesCellBoundaries(t *testing.T) {
	assert.NotEqual(t, Record{"ab", "c"}.Key(), Record{"a", "bc"}.Key())
	assert.NotEqual(t, Record{"a\x1f", "b"}.Key(), Record{"a", "\x1fb"}.Key())
	assert.NotEqual(t, Record{"1:a"}.Key(), Record{"1", "a"}.Key())
	assert.Equal(t, Record{"a", "b"}.Key(), Record{"a", "b"}.Key())
}

func TestValueAndMissing(t *testing.T) {
	tbl := Table{
		Columns: []string{ColCompany, ColState},
		Rows:    []Record{{"Acme", "NY"}},
	}
	assert.Equal(t, "NY", tbl.Value(0, ColState))
	assert.Equal(t, "", tbl.Value(0, ColIndustry))
	assert.Equal(t, "", tbl.Value(3, ColState))
	assert.Equal(t, []string{ColIndustry, ColWorkers, ColReceivedDate}, tbl.Missing(DashboardColumns...))
}

func TestCloneIsDeep(t *testing.T) {
	tbl := Table{Columns: []string{"A"}, Rows: []Record{{"1"}}}
	c := tbl.Clone()
	c.Rows[0][0] = "2"
	assert.Equal(t, "1", tbl.Rows[0][0])
}
