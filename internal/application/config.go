// Package application provides configuration loading and the enrichment
// pipeline that prepare measurement rows for scoring.
package application

// EventConfig defines the complete configuration for one scavenger-hunt
// event and serves as the primary configuration entry point for the system.
// EventConfig is decoded from YAML and validated before any scoring runs.
type EventConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the event.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Scoring holds the thresholds and tag matching switches.
	Scoring ScoringConfig `yaml:"scoring"`
	// Categories overrides or extends the default point table. Entries
	// are merged over the defaults, so a config only lists what changes.
	Categories map[string]float64 `yaml:"categories,omitempty" validate:"max=200,dive,keys,required,max=100,endkeys,points"`
	// ReferenceNodes lists the fixed antenna sites distances are measured
	// from during enrichment. Empty keeps the built-in nodes.
	ReferenceNodes []ReferenceNodeConfig `yaml:"reference_nodes,omitempty" validate:"max=100,dive"`
	// BlockGroups points at the GeoJSON area dataset used during
	// enrichment.
	BlockGroups BlockGroupsConfig `yaml:"block_groups,omitempty"`
	// Server configures the HTTP scoring API.
	Server ServerConfig `yaml:"server,omitempty"`
}

// Metadata provides descriptive information about an event to support
// organization and discovery.
type Metadata struct {
	// Name is the human-readable identifier for this event.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description provides a free-form explanation of the event.
	Description string `yaml:"description,omitempty" validate:"max=1000"`
	// Tags are categorical labels used to group events.
	Tags []string `yaml:"tags,omitempty" validate:"max=20,dive,min=1,max=50"`
}

// ScoringConfig tunes the scoring rules. Omitted thresholds fall back to the
// stock event values.
type ScoringConfig struct {
	// GoodSignalThreshold is the reading a measurement must exceed, in dBm.
	GoodSignalThreshold *float64 `yaml:"good_signal_threshold,omitempty" validate:"omitempty,gte=-200,lte=50"`
	// ManyAreasThreshold is the number of distinct areas required for the
	// many-areas bonus.
	ManyAreasThreshold *int `yaml:"many_areas_threshold,omitempty" validate:"omitempty,min=1,max=1000"`
	// StrictTags rejects rows carrying tags missing from the point table.
	StrictTags bool `yaml:"strict_tags"`
	// CaseInsensitiveTags matches tags with Unicode case folding.
	CaseInsensitiveTags bool `yaml:"case_insensitive_tags"`
}

// ReferenceNodeConfig is a named antenna site.
type ReferenceNodeConfig struct {
	Name      string  `yaml:"name" validate:"required,max=100"`
	Latitude  float64 `yaml:"latitude" validate:"latitude"`
	Longitude float64 `yaml:"longitude" validate:"longitude"`
}

// BlockGroupsConfig locates the area polygons. A relative Path is resolved
// against the directory of the config file.
type BlockGroupsConfig struct {
	Path       string `yaml:"path,omitempty" validate:"omitempty,max=4096"`
	IDProperty string `yaml:"id_property,omitempty" validate:"omitempty,max=100"`
}

// ServerConfig controls the HTTP scoring API.
type ServerConfig struct {
	// Listen is the host:port the server binds to.
	Listen string `yaml:"listen,omitempty" validate:"omitempty,hostname_port"`
	// RequestsPerSecond paces scoring requests per client; zero disables
	// pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty" validate:"omitempty,gt=0,max=10000"`
	// Burst is the number of requests allowed above the steady rate.
	Burst int `yaml:"burst,omitempty" validate:"omitempty,min=1,max=10000"`
	// MaxRows bounds the number of rows accepted in one request.
	MaxRows int `yaml:"max_rows,omitempty" validate:"omitempty,min=1,max=1000000"`
	// AllowedOrigins lists CORS origins; empty disables CORS headers.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" validate:"max=50,dive,required"`
}

// Server defaults applied when the config leaves a field unset.
const (
	DefaultListen  = ":8080"
	DefaultMaxRows = 10000
)

// WithDefaults returns a copy with unset server fields filled in.
func (s ServerConfig) WithDefaults() ServerConfig {
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.MaxRows == 0 {
		s.MaxRows = DefaultMaxRows
	}
	if s.RequestsPerSecond > 0 && s.Burst == 0 {
		s.Burst = max(1, int(s.RequestsPerSecond))
	}
	return s
}
