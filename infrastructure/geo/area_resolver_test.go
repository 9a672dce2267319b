package geo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-signalhunt/internal/ports"
)

// blockGroupsFixture holds two block groups near downtown Tucson: a square
// with a hole, and a two-part multipolygon with a numeric id.
const blockGroupsFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"GEOID": "040190013022", "NAME": "Block Group 2"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [
          [[-110.98, 32.23], [-110.96, 32.23], [-110.96, 32.25], [-110.98, 32.25], [-110.98, 32.23]],
          [[-110.979, 32.231], [-110.977, 32.231], [-110.977, 32.233], [-110.979, 32.233], [-110.979, 32.231]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {"GEOID": 40190014001},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[-110.96, 32.23], [-110.94, 32.23], [-110.94, 32.25], [-110.96, 32.25], [-110.96, 32.23]]],
          [[[-110.90, 32.30], [-110.89, 32.30], [-110.89, 32.31], [-110.90, 32.31], [-110.90, 32.30]]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {"GEOID": "ignored"},
      "geometry": {"type": "Point", "coordinates": [-110.97, 32.24]}
    }
  ]
}`

func newFixtureResolver(t *testing.T) *BlockGroupResolver {
	t.Helper()
	r, err := NewBlockGroupResolver(strings.NewReader(blockGroupsFixture), "")
	require.NoError(t, err)
	return r
}

func TestBlockGroupResolver_Resolve(t *testing.T) {
	r := newFixtureResolver(t)
	require.Equal(t, 2, r.Len())

	tests := []struct {
		name    string
		lat     float64
		lon     float64
		want    string
		wantErr error
	}{
		{name: "polygon", lat: 32.242426, lon: -110.972476, want: "040190013022"},
		{name: "multipolygon first part", lat: 32.24, lon: -110.95, want: "40190014001"},
		{name: "multipolygon second part", lat: 32.305, lon: -110.895, want: "40190014001"},
		{name: "inside hole", lat: 32.232, lon: -110.978, wantErr: ports.ErrAreaNotFound},
		{name: "outside every area", lat: 33.0, lon: -111.5, wantErr: ports.ErrAreaNotFound},
		{name: "invalid latitude", lat: 95, lon: -110.97, wantErr: ports.ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.lat, tt.lon)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var rerr *ports.ResolveError
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, "area", rerr.Resolver)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlockGroupResolver_CanceledContext(t *testing.T) {
	r := newFixtureResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, 32.242426, -110.972476)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBlockGroupResolver_InvalidDatasets(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "no polygons", data: `{"type":"FeatureCollection","features":[]}`},
		{
			name: "missing id property",
			data: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
				"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlockGroupResolver(strings.NewReader(tt.data), DefaultIDProperty)
			require.Error(t, err)
			assert.ErrorIs(t, err, ports.ErrDatasetInvalid)
		})
	}
}

func TestLoadBlockGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block_groups.geojson")
	require.NoError(t, os.WriteFile(path, []byte(blockGroupsFixture), 0o600))

	r, err := LoadBlockGroups(path, "GEOID")
	require.NoError(t, err)
	got, err := r.Resolve(context.Background(), 32.242426, -110.972476)
	require.NoError(t, err)
	assert.Equal(t, "040190013022", got)

	_, err = LoadBlockGroups(filepath.Join(t.TempDir(), "missing.geojson"), "")
	assert.Error(t, err)
}
