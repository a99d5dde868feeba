package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testRename = map[string]string{
	"Unnamed: 0": "Date",
	"Plant Influent\n[Plant Influent Total Flow]": "Plant_Influent",
	"Vista Gauge Level (feet)":                    "Vista_Level_ft",
	"PRCP (Inches)":                               "PRCP_in",
}

const rawCSV = `Unnamed: 0,"Plant Influent
[Plant Influent Total Flow]",Vista Gauge Level (feet),PRCP (Inches),Extra
2024-01-01,10,1,0.1,x
2024-01-02,12,2,,1
not-a-date,14,3,0.3,2
2024-01-04,,4,0.4,3
2024-01-05,18,NaN,0.5,4
`

func readTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := Read(strings.NewReader(rawCSV), LoadOptions{RenameMap: testRename, DateColumn: "Date"}, zap.NewNop())
	require.NoError(t, err)
	return table
}

func TestRead_RenamesAndParses(t *testing.T) {
	table := readTestTable(t)

	assert.Equal(t, []string{"Date", "Plant_Influent", "Vista_Level_ft", "PRCP_in", "Extra"}, table.Columns())
	assert.Equal(t, 5, table.Len())

	dates, err := table.Dates("Date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.True(t, dates[2].IsZero(), "unparsable date should become the null date")
	assert.Equal(t, 1, table.MissingCount("Date"))

	flow, err := table.Float("Plant_Influent")
	require.NoError(t, err)
	assert.Equal(t, 10.0, flow[0])
	assert.True(t, math.IsNaN(flow[3]))

	extra, err := table.Float("Extra")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(extra[0]), "non-numeric cell should be missing")
	assert.Equal(t, 4.0, extra[4])
}

func TestRead_DuplicateColumnAfterRename(t *testing.T) {
	_, err := Read(strings.NewReader("Unnamed: 0,Date\n1,2\n"), LoadOptions{RenameMap: testRename}, zap.NewNop())
	assert.Error(t, err)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), LoadOptions{}, zap.NewNop())
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "OrganizedHighFlowData.csv"), LoadOptions{}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(rawCSV), 0644))

	table, err := Load(path, LoadOptions{RenameMap: testRename, DateColumn: "Date"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
}

func TestSelect_DropsRowsWithMissingValues(t *testing.T) {
	table := readTestTable(t)

	frame, err := Select(table, "Plant_Influent", "Vista_Level_ft", "PRCP_in")
	require.NoError(t, err)

	// Row 2 misses PRCP, row 4 misses the target, row 5 misses the level.
	assert.Equal(t, 2, frame.Len())
	assert.Equal(t, [][]float64{{1, 0.1}, {3, 0.3}}, frame.X)
	assert.Equal(t, []float64{10, 14}, frame.Y)
	assert.Equal(t, []string{"Vista_Level_ft", "PRCP_in"}, frame.Features)
	assert.ErrorIs(t, frame.RequireRows(MinUsableRows), ErrInsufficientData)
}

func TestSelect_MissingColumn(t *testing.T) {
	table := readTestTable(t)

	_, err := Select(table, "Plant_Influent", "Flow1_cfs")
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "Flow1_cfs", mce.Column)

	_, err = Select(table, "North_Manhole_Level_ft", "Vista_Level_ft")
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "North_Manhole_Level_ft", mce.Column)
}

func TestSelectAllExcept(t *testing.T) {
	table := readTestTable(t)

	frame, err := SelectAllExcept(table, "Plant_Influent", "Extra")
	require.NoError(t, err)
	assert.Equal(t, []string{"Vista_Level_ft", "PRCP_in"}, frame.Features, "date, target and excluded columns are not features")

	_, err = SelectAllExcept(table, "Missing")
	var mce *MissingColumnError
	assert.True(t, errors.As(err, &mce))
}

func TestFrame_SubsetAndColumn(t *testing.T) {
	values := map[string][]float64{
		"y": {1, 2, 3},
		"a": {10, 20, 30},
	}
	table, err := NewTable([]string{"y", "a"}, values)
	require.NoError(t, err)
	frame, err := Select(table, "y", "a")
	require.NoError(t, err)

	sub := frame.Subset([]int{2, 0})
	assert.Equal(t, []float64{3, 1}, sub.Y)
	col, ok := sub.Column("a")
	require.True(t, ok)
	assert.Equal(t, []float64{30, 10}, col)

	_, ok = sub.Column("b")
	assert.False(t, ok)
}

func TestNewTable_RaggedColumns(t *testing.T) {
	_, err := NewTable([]string{"a", "b"}, map[string][]float64{"a": {1, 2}, "b": {1}})
	assert.Error(t, err)
}
