package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frcmap/season-map/internal/model"
)

func TestTable(t *testing.T) {
	table := NewTable(map[string]*model.Team{
		"frc254": {Key: "frc254"},
		"frc1":   {Key: "frc1"},
		"frc118": {Key: "frc118"},
	})

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"frc1", "frc118", "frc254"}, table.Keys())

	var order []string
	table.Each(func(key string, item *model.Team) {
		assert.Equal(t, key, item.Key)
		order = append(order, key)
	})
	assert.Equal(t, table.Keys(), order)

	got, ok := table.Get("frc118")
	assert.True(t, ok)
	assert.Equal(t, "frc118", got.Key)
	_, ok = table.Get("frc9999")
	assert.False(t, ok)
}

func TestTable_NilMap(t *testing.T) {
	table := NewTable[*model.Event](nil)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Keys())
	assert.NotNil(t, table.Items())
}
