package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-signalhunt/internal/ports"
)

func testNodes() []ReferenceNode {
	return append(DefaultReferenceNodes(), ReferenceNode{Name: "Equator", Latitude: 0, Longitude: 0})
}

func TestNodeDistanceResolver_Distance(t *testing.T) {
	r, err := NewNodeDistanceResolver(testNodes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Equator", "Tucson House"}, r.Nodes())

	tests := []struct {
		name string
		lat  float64
		lon  float64
		node string
		want float64
	}{
		{name: "nearby point", lat: 32.242426, lon: -110.972476, node: "Tucson House", want: 0.6637975665},
		{name: "one degree of latitude", lat: 1, lon: 0, node: "Equator", want: 69.09341957563635},
		{name: "same point", lat: 0, lon: 0, node: " Equator ", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Distance(context.Background(), tt.lat, tt.lon, tt.node)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDefaultReferenceNodes(t *testing.T) {
	r, err := NewNodeDistanceResolver(DefaultReferenceNodes())
	require.NoError(t, err)
	assert.Equal(t, []string{TucsonHouse}, r.Nodes())

	got, err := r.Distance(context.Background(), 32.242426, -110.972476, TucsonHouse)
	require.NoError(t, err)
	assert.InDelta(t, 0.6637975665, got, 1e-9)
}

func TestNodeDistanceResolver_Errors(t *testing.T) {
	r, err := NewNodeDistanceResolver(testNodes())
	require.NoError(t, err)

	_, err = r.Distance(context.Background(), 32.2, -110.9, "Mystery Node")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrUnknownNode)
	var rerr *ports.ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Mystery Node", rerr.Target)

	_, err = r.Distance(context.Background(), 32.2, -200, "Equator")
	assert.ErrorIs(t, err, ports.ErrInvalidCoordinates)
}

func TestNewNodeDistanceResolver_Validation(t *testing.T) {
	tests := []struct {
		name  string
		nodes []ReferenceNode
	}{
		{name: "empty name", nodes: []ReferenceNode{{Name: " "}}},
		{name: "duplicate", nodes: []ReferenceNode{{Name: "A"}, {Name: "A "}}},
		{name: "bad coordinates", nodes: []ReferenceNode{{Name: "A", Latitude: 91}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNodeDistanceResolver(tt.nodes)
			assert.Error(t, err)
		})
	}
}
