package tablestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumulus-hr/cumulus/tablestore"
)

func TestSchemaFor(t *testing.T) {
	s, ok := tablestore.SchemaFor(tablestore.TableLeaves)
	require.True(t, ok)
	assert.Equal(t, tablestore.TableLeaves, s.Name)
	assert.Contains(t, s.Columns, "status")

	_, ok = tablestore.SchemaFor("unknown")
	assert.False(t, ok)
}

func TestNormalize_FillsDefaultsForMissingColumns(t *testing.T) {
	// A leaves row written before the note column existed.
	s, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	rec := tablestore.Record{
		"id": "r1", "username": "alice", "category": "annual",
		"start_date": "2024-05-02", "days": "1",
	}

	norm := s.Normalize(rec)

	assert.Equal(t, "pending", norm["status"], "status defaults")
	assert.Equal(t, "full", norm["session"], "session defaults")
	assert.Equal(t, "", norm["note"], "undeclared default is empty string")
	assert.Equal(t, "r1", norm["id"], "present cells pass through")

	// Input record untouched.
	_, has := rec["status"]
	assert.False(t, has)
}

func TestNormalize_DropsUndeclaredColumns(t *testing.T) {
	s, _ := tablestore.SchemaFor(tablestore.TableAttendance)
	norm := s.Normalize(tablestore.Record{"username": "alice", "mystery": "x"})

	_, has := norm["mystery"]
	assert.False(t, has)
}

func TestRow_FlattensInColumnOrder(t *testing.T) {
	s, _ := tablestore.SchemaFor(tablestore.TableBalance)
	row := s.Row(tablestore.Record{"username": "alice", "marriage": "8"})

	assert.Equal(t, []string{"alice", "0", "8", "0", "0"}, row)
}

func TestRows_PreservesOrder(t *testing.T) {
	s, _ := tablestore.SchemaFor(tablestore.TableAttendance)
	rows := s.Rows([]tablestore.Record{
		{"username": "alice", "time": "t1", "action": "clock_in"},
		{"username": "bob", "time": "t2", "action": "clock_out"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "t1", "clock_in"}, rows[0])
	assert.Equal(t, []string{"bob", "t2", "clock_out"}, rows[1])
}
