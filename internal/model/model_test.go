package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Beatmap", &Beatmap{}, "beatmaps"},
		{"Score", &Score{}, "scores"},
		{"IndexRun", &IndexRun{}, "index_runs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 3)
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "%T has a table name", m)
	}
}

func TestObjectCounts_Total(t *testing.T) {
	c := ObjectCounts{Circles: 3, Sliders: 2, Spinners: 1, Holds: 4}
	assert.Equal(t, 10, c.Total())
}
