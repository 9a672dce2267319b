package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-signalhunt/infrastructure/geo"
	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/ports"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

// Event is a validated event configuration compiled into the values the
// scoring and enrichment stages consume.
// WARNING: Events returned by ConfigLoader are shared cached instances and
// MUST NOT be mutated.
type Event struct {
	// Config is the decoded configuration.
	Config *EventConfig
	// Rules are the scoring rules with category overrides merged over the
	// default table.
	Rules scoring.Rules
	// Nodes are the configured reference nodes, or the built-in set when the
	// config lists none.
	Nodes []geo.ReferenceNode
	// BlockGroupsPath is the absolute or working-directory relative path of
	// the area dataset, or empty when none is configured.
	BlockGroupsPath string
	// Hash identifies the normalized configuration.
	Hash string
}

// DefaultEvent returns an event with the stock scoring rules and reference
// nodes but no area dataset, used when no config file is given.
func DefaultEvent() *Event {
	return &Event{
		Config: &EventConfig{
			Version:  "1.0.0",
			Metadata: Metadata{Name: "default"},
		},
		Rules: scoring.DefaultRules(),
		Nodes: geo.DefaultReferenceNodes(),
	}
}

// NodeResolver builds a distance resolver over the configured nodes.
func (e *Event) NodeResolver() (*geo.NodeDistanceResolver, error) {
	if len(e.Nodes) == 0 {
		return nil, ports.NewConfigError("reference_nodes", ports.ErrConfigNotFound)
	}
	return geo.NewNodeDistanceResolver(e.Nodes)
}

// AreaResolver loads the configured block group dataset.
func (e *Event) AreaResolver() (*geo.BlockGroupResolver, error) {
	if e.BlockGroupsPath == "" {
		return nil, ports.NewConfigError("block_groups.path", ports.ErrConfigNotFound)
	}
	return geo.LoadBlockGroups(e.BlockGroupsPath, e.Config.BlockGroups.IDProperty)
}

// ConfigLoader provides YAML configuration parsing, validation, and caching
// for event configurations.
// Use ConfigLoader to load configs from files or readers while benefiting
// from SHA256-based caching and comprehensive validation.
type ConfigLoader struct {
	validator *validator.Validate
	// cache stores compiled events indexed by SHA256 hash of the normalized
	// config and its base directory.
	cache   map[string]*Event
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same config simultaneously.
	sf singleflight.Group
}

// NewConfigLoader creates a loader with custom validators registered and an
// empty cache.
// NewConfigLoader returns an error if validator registration fails.
func NewConfigLoader() (*ConfigLoader, error) {
	v := validator.New()

	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &ConfigLoader{
		validator: v,
		cache:     make(map[string]*Event),
	}, nil
}

// load parses, validates and compiles config bytes. baseDir anchors a
// relative block group path.
func (cl *ConfigLoader) load(ctx context.Context, data []byte, baseDir string) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Parse YAML first to normalize it before hashing.
	config, err := cl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := cl.calculateConfigHash(config, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		// Check cache inside singleflight to handle race between cache check
		// and singleflight group execution.
		if event, ok := cl.getCachedEvent(hash); ok {
			return event, nil
		}

		if err := cl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		event, err := cl.buildEvent(config, baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to build event: %w", err)
		}
		event.Hash = hash

		cl.cacheEvent(hash, event)
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Event), nil
}

// LoadFromFile loads an event configuration from a YAML file. A relative
// block group path is resolved against the file's directory.
// WARNING: The returned event is a cached instance and MUST NOT be mutated.
func (cl *ConfigLoader) LoadFromFile(ctx context.Context, path string) (*Event, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return cl.load(ctx, data, filepath.Dir(cleanPath))
}

// LoadFromReader loads an event configuration from r. A relative block
// group path is left relative to the working directory.
// WARNING: The returned event is a cached instance and MUST NOT be mutated.
func (cl *ConfigLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return cl.load(ctx, data, "")
}

// parseYAML uses strict decoding so that misspelled keys fail the load
// instead of being silently ignored.
func (cl *ConfigLoader) parseYAML(data []byte) (*EventConfig, error) {
	var config EventConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig performs struct field validation followed by semantic
// validation of relationships between configuration elements.
func (cl *ConfigLoader) validateConfig(config *EventConfig) error {
	if err := cl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// buildEvent compiles the scoring rules and reference nodes. The rules are
// validated again as a whole so a config cannot drop a structural category.
func (cl *ConfigLoader) buildEvent(config *EventConfig, baseDir string) (*Event, error) {
	rules := scoring.DefaultRules()
	rules.Categories = domain.DefaultCategoryTable().With(config.Categories)
	if config.Scoring.GoodSignalThreshold != nil {
		rules.GoodSignalThreshold = *config.Scoring.GoodSignalThreshold
	}
	if config.Scoring.ManyAreasThreshold != nil {
		rules.ManyAreasThreshold = *config.Scoring.ManyAreasThreshold
	}
	rules.StrictTags = config.Scoring.StrictTags
	rules.CaseInsensitiveTags = config.Scoring.CaseInsensitiveTags

	if err := rules.Validate(); err != nil {
		return nil, err
	}

	nodes := geo.DefaultReferenceNodes()
	if len(config.ReferenceNodes) > 0 {
		nodes = make([]geo.ReferenceNode, 0, len(config.ReferenceNodes))
		for _, n := range config.ReferenceNodes {
			nodes = append(nodes, geo.ReferenceNode{
				Name:      n.Name,
				Latitude:  n.Latitude,
				Longitude: n.Longitude,
			})
		}
	}

	blockGroups := config.BlockGroups.Path
	if blockGroups != "" && !filepath.IsAbs(blockGroups) && baseDir != "" {
		blockGroups = filepath.Join(baseDir, blockGroups)
	}

	return &Event{
		Config:          config,
		Rules:           rules,
		Nodes:           nodes,
		BlockGroupsPath: blockGroups,
	}, nil
}

// calculateConfigHash computes the SHA256 hash of a normalized EventConfig
// and its base directory, so semantically identical configurations share a
// cache entry regardless of whitespace or key ordering differences.
func (cl *ConfigLoader) calculateConfigHash(config *EventConfig, baseDir string) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	buf.WriteByte(0)
	buf.WriteString(baseDir)

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (cl *ConfigLoader) getCachedEvent(hash string) (*Event, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()

	event, ok := cl.cache[hash]
	return event, ok
}

func (cl *ConfigLoader) cacheEvent(hash string, event *Event) {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache[hash] = event
}

// ClearCache removes all cached events, forcing subsequent loads to
// recompile from source.
func (cl *ConfigLoader) ClearCache() {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()

	cl.cache = make(map[string]*Event)
}

// CacheSize reports the number of cached events.
func (cl *ConfigLoader) CacheSize() int {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()

	return len(cl.cache)
}
