package geo

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/ahrav/go-signalhunt/internal/ports"
)

var _ ports.DistanceResolver = (*NodeDistanceResolver)(nil)

// EarthRadiusMiles is the mean earth radius used to turn angular distance
// into miles.
const EarthRadiusMiles = 3958.761333810546

// ReferenceNode is a named distance anchor.
type ReferenceNode struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// TucsonHouse is the antenna site of the downtown event.
const TucsonHouse = "Tucson House"

// DefaultReferenceNodes returns the reference nodes used when an event
// config does not list its own.
func DefaultReferenceNodes() []ReferenceNode {
	return []ReferenceNode{
		{Name: TucsonHouse, Latitude: 32.2505642, Longitude: -110.9785129},
	}
}

// NodeDistanceResolver measures distances to a fixed set of reference
// nodes. It is immutable and safe for concurrent use.
type NodeDistanceResolver struct {
	nodes map[string]orb.Point
}

// NewNodeDistanceResolver indexes nodes by name. Names are trimmed and must
// be unique and non-empty.
func NewNodeDistanceResolver(nodes []ReferenceNode) (*NodeDistanceResolver, error) {
	index := make(map[string]orb.Point, len(nodes))
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			return nil, fmt.Errorf("reference node name cannot be empty")
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate reference node %q", name)
		}
		if err := checkCoordinates(n.Latitude, n.Longitude); err != nil {
			return nil, fmt.Errorf("reference node %q: %w", name, err)
		}
		index[name] = orb.Point{n.Longitude, n.Latitude}
	}
	return &NodeDistanceResolver{nodes: index}, nil
}

// Nodes returns the configured node names in lexical order.
func (r *NodeDistanceResolver) Nodes() []string { return slices.Sorted(maps.Keys(r.nodes)) }

// Distance returns the haversine distance in miles from the point to node.
func (r *NodeDistanceResolver) Distance(ctx context.Context, lat, lon float64, node string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	anchor, ok := r.nodes[strings.TrimSpace(node)]
	if !ok {
		rerr := ports.NewResolveError("distance", lat, lon, ports.ErrUnknownNode)
		rerr.Target = node
		return 0, rerr
	}
	if err := checkCoordinates(lat, lon); err != nil {
		rerr := ports.NewResolveError("distance", lat, lon, err)
		rerr.Target = node
		return 0, rerr
	}

	meters := geo.DistanceHaversine(orb.Point{lon, lat}, anchor)
	return meters / orb.EarthRadius * EarthRadiusMiles, nil
}
