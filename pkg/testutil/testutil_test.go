package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeopleTable(t *testing.T) {
	table := PeopleTable(t, 4)
	assert.Equal(t, "people", table.Name())
	assert.Equal(t, 4, table.RowCount())

	age, err := table.CellValueNamed(2, "age")
	require.NoError(t, err)
	assert.Nil(t, age)

	joined, err := table.CellValueNamed(3, "joined")
	require.NoError(t, err)
	assert.Equal(t, Joined.AddDate(0, 0, 3), joined)

	assert.Error(t, table.AppendValues(PersonValues(0)...), "ids are unique")
}

func TestPeopleCSV(t *testing.T) {
	assert.Equal(t, "id,name,age,email,joined\n"+
		"1,person-1,20,person1@example.com,2024-01-15T09:30:00Z\n"+
		"2,person-2,21,person2@example.com,2024-01-16T09:30:00Z\n"+
		"3,person-3,,person3@example.com,2024-01-17T09:30:00Z\n", PeopleCSV(3))
}
