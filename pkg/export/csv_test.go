package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderKeepsColumnOrder(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Table{
		Header: []string{"category", "count"},
		Records: [][]string{
			{"Garbage", "7"},
			{"Road/Pothole", "5"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "category,count\nGarbage,7\nRoad/Pothole,5\n", string(payload))
}

func TestCSVRenderRequiresHeader(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Table{})
	assert.Error(t, err)
}

func TestCSVRenderRejectsRaggedRecords(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Table{
		Header:  []string{"category", "count"},
		Records: [][]string{{"Garbage"}},
	})
	assert.Error(t, err)
}
