// Package geo provides the geographic collaborators that run upstream of
// scoring: tagging a point with its containing block group and measuring
// its distance to a reference node.
package geo

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/ahrav/go-signalhunt/internal/ports"
)

var _ ports.AreaResolver = (*BlockGroupResolver)(nil)

// DefaultIDProperty is the feature property holding the block group id in
// census TIGER/Line exports.
const DefaultIDProperty = "GEOID"

// area is one block group prepared for containment queries.
type area struct {
	id    string
	bound orb.Bound
	geom  orb.Geometry
}

// BlockGroupResolver tags points with the block group that contains them.
// The dataset is loaded once and never modified, so the resolver is safe
// for concurrent use.
type BlockGroupResolver struct {
	areas []area
}

// LoadBlockGroups reads a GeoJSON FeatureCollection from path.
func LoadBlockGroups(path, idProperty string) (*BlockGroupResolver, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open block groups: %w", err)
	}
	defer f.Close()

	return NewBlockGroupResolver(f, idProperty)
}

// NewBlockGroupResolver reads a GeoJSON FeatureCollection from r. Each
// Polygon or MultiPolygon feature becomes an area keyed by idProperty;
// features of other geometry types are ignored. An empty idProperty selects
// DefaultIDProperty.
func NewBlockGroupResolver(r io.Reader, idProperty string) (*BlockGroupResolver, error) {
	if idProperty == "" {
		idProperty = DefaultIDProperty
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read block groups: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDatasetInvalid, err)
	}

	areas := make([]area, 0, len(fc.Features))
	for i, feature := range fc.Features {
		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		id, ok := propertyString(feature.Properties, idProperty)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d has no %q property", ports.ErrDatasetInvalid, i, idProperty)
		}
		areas = append(areas, area{
			id:    id,
			bound: feature.Geometry.Bound(),
			geom:  feature.Geometry,
		})
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("%w: no polygon features", ports.ErrDatasetInvalid)
	}

	return &BlockGroupResolver{areas: areas}, nil
}

// Len returns the number of loaded areas.
func (r *BlockGroupResolver) Len() int { return len(r.areas) }

// Resolve returns the id of the block group containing the point.
func (r *BlockGroupResolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkCoordinates(lat, lon); err != nil {
		return "", ports.NewResolveError("area", lat, lon, err)
	}

	pt := orb.Point{lon, lat}
	for _, a := range r.areas {
		if !a.bound.Contains(pt) {
			continue
		}
		if contains(a.geom, pt) {
			return a.id, nil
		}
	}
	return "", ports.NewResolveError("area", lat, lon, ports.ErrAreaNotFound)
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	default:
		return false
	}
}

// propertyString reads key as a string. Numeric ids are formatted without
// exponent so long census ids survive a JSON number round trip.
func propertyString(props geojson.Properties, key string) (string, bool) {
	switch v := props[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func checkCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ports.ErrInvalidCoordinates
	}
	return nil
}
