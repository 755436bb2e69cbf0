// Package collectors provides the built-in warehouse collectors and the
// registry that builds them from configuration.
//
// Every collector reports 1-based line numbers and honours its MaxItems
// setting by dropping further items and flagging the output as truncated.
package collectors

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/urlguard"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// Settings are the resolved per-run settings handed to a factory.
type Settings struct {
	// MaxItems caps the collector's output; 0 means unlimited.
	MaxItems int

	// URLs validates link and image destinations.
	URLs *urlguard.Validator

	// Options holds collector-specific settings from the config file.
	Options map[string]any
}

// Bool returns a boolean option, or def when it is unset or not a bool.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s.Options[key].(bool); ok {
		return v
	}
	return def
}

func (s Settings) validator() *urlguard.Validator {
	if s.URLs == nil {
		return urlguard.Default()
	}
	return s.URLs
}

// Factory creates a fresh collector for one dispatch.
type Factory func(Settings) warehouse.Collector

// Spec describes a built-in collector.
type Spec struct {
	Name        string
	Description string
	Interests   []warehouse.Kind

	// IgnoreInside is the default exclusion mask, used when the config
	// leaves ignore_inside unset.
	IgnoreInside warehouse.ContainerMask

	// EnabledByDefault applies when neither the config nor the CLI decides.
	EnabledByDefault bool

	New Factory
}

// Registry maps collector names to their specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec, replacing any spec with the same name.
func (r *Registry) Register(spec Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Name] = spec
}

// Get returns the spec registered under name.
func (r *Registry) Get(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns all specs sorted by name.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, spec)
	}
	slices.SortFunc(out, func(a, b Spec) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	specs := r.Specs()
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return names
}

// Build returns a fresh warehouse registry holding every collector enabled
// by cfg, registered in name order. A nil cfg enables the defaults.
func (r *Registry) Build(cfg *config.Config) (*warehouse.Registry, error) {
	validator := urlguard.Default()
	if cfg != nil {
		validator = urlguard.New(urlguard.Policy{
			AllowedSchemes: cfg.URLs.AllowedSchemes,
			AllowRelative:  cfg.URLs.AllowRelative,
		})
	}

	reg := warehouse.NewRegistry()
	for _, spec := range r.Specs() {
		if !cfg.CollectorEnabled(spec.Name, spec.EnabledByDefault) {
			continue
		}

		cc := cfg.Collector(spec.Name)
		desc, err := spec.descriptor(cc)
		if err != nil {
			return nil, err
		}

		settings := Settings{MaxItems: desc.MaxItems, URLs: validator, Options: cc.Options}
		if err := reg.Register(desc, spec.New(settings)); err != nil {
			return nil, fmt.Errorf("register %s: %w", spec.Name, err)
		}
	}
	return reg, nil
}

func (s Spec) descriptor(cc config.CollectorConfig) (warehouse.Descriptor, error) {
	desc := warehouse.Descriptor{
		Name:         s.Name,
		Interests:    s.Interests,
		IgnoreInside: s.IgnoreInside,
	}

	if cc.IgnoreInside != nil {
		mask, err := warehouse.ParseMask(cc.IgnoreInside)
		if err != nil {
			return desc, fmt.Errorf("collector %s: ignore_inside: %w", s.Name, err)
		}
		desc.IgnoreInside = mask
	}

	if cc.MaxItems != nil {
		if *cc.MaxItems < 0 {
			return desc, fmt.Errorf("collector %s: max_items must not be negative", s.Name)
		}
		desc.MaxItems = *cc.MaxItems
	}

	return desc, nil
}

// Infos describes the registered collectors for config templates.
func (r *Registry) Infos() []config.CollectorInfo {
	specs := r.Specs()
	infos := make([]config.CollectorInfo, len(specs))
	for i, spec := range specs {
		interests := make([]string, len(spec.Interests))
		for j, k := range spec.Interests {
			interests[j] = k.String()
		}
		infos[i] = config.CollectorInfo{
			Name:         spec.Name,
			Description:  spec.Description,
			Enabled:      spec.EnabledByDefault,
			Interests:    interests,
			IgnoreInside: spec.IgnoreInside.Names(),
		}
	}
	return infos
}

// Default is the registry of built-in collectors.
//
//nolint:gochecknoglobals // Built-in collectors are registered once.
var Default = func() *Registry {
	r := NewRegistry()
	r.Register(LinksSpec())
	r.Register(ImagesSpec())
	r.Register(HeadingsSpec())
	r.Register(TablesSpec())
	r.Register(FencesSpec())
	r.Register(HTMLSpec())
	return r
}()

// Build builds the enabled built-in collectors.
func Build(cfg *config.Config) (*warehouse.Registry, error) {
	return Default.Build(cfg)
}

// list accumulates items up to a cap.
type list[T any] struct {
	max       int
	items     []T
	truncated bool
}

func newList[T any](maxItems int) list[T] {
	return list[T]{max: maxItems}
}

// add appends item unless the cap was reached.
func (l *list[T]) add(item T) {
	if l.max > 0 && len(l.items) >= l.max {
		l.truncated = true
		return
	}
	l.items = append(l.items, item)
}

func (l *list[T]) output() warehouse.Output {
	items := l.items
	if items == nil {
		items = []T{}
	}
	out := warehouse.Output{Value: items, Truncated: l.truncated}
	if l.truncated {
		out.Warnings = []string{fmt.Sprintf("truncated at %d items", l.max)}
	}
	return out
}

// lineOf converts a token's 0-based start line to a 1-based line.
func lineOf(tok *warehouse.Token) int {
	return int(tok.Line()) + 1
}

// lastLineOf returns the 1-based last line a token covers.
func lastLineOf(tok *warehouse.Token) int {
	start, end := tok.Lines()
	if end <= start {
		return int(start) + 1
	}
	return int(end)
}

// UnsafeURLs counts the links and images in results that failed URL
// validation.
func UnsafeURLs(results map[string]warehouse.Result) int {
	n := 0
	for _, r := range results {
		switch items := r.Value.(type) {
		case []Link:
			for _, l := range items {
				if !l.Safe {
					n++
				}
			}
		case []Image:
			for _, img := range items {
				if !img.Safe {
					n++
				}
			}
		}
	}
	return n
}
