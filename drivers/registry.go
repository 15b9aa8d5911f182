package drivers

import (
	"fmt"
	"sort"

	"github.com/kf7lze/radioclone/bitfield"
	"github.com/kf7lze/radioclone/clone"
	"github.com/kf7lze/radioclone/memmap"
	"github.com/kf7lze/radioclone/settings"
)

// Config is one radio model's complete driver description: identity,
// memory layout, and clone protocol. Configs are immutable after
// registration and shared by every session for that model.
type Config struct {
	Vendor string
	Model  string

	// MemSize is the image length in bytes.
	MemSize int

	// Fields is the model's full descriptor set.
	Fields []*bitfield.Field

	// Protocol is the clone protocol, with download addressing. Radios
	// that upload only selected windows list them in UploadRanges.
	Protocol     clone.Protocol
	UploadRanges []clone.AddrRange

	// buildTree constructs the model's settings hierarchy over a
	// populated image.
	buildTree func(*Config, *memmap.MemoryMap) *settings.Group
}

// UploadProtocol returns the protocol variant used for uploads: identical
// to Protocol unless the driver restricts uploads to explicit windows.
func (c *Config) UploadProtocol() clone.Protocol {
	p := c.Protocol
	if len(c.UploadRanges) > 0 {
		p.Addressing = clone.AddrExplicit
		p.Ranges = c.UploadRanges
	}
	return p
}

// Field returns the named descriptor, or nil.
func (c *Config) Field(name string) *bitfield.Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// BuildTree constructs the settings tree for a populated memory map. The
// map must be the model's full image size.
func (c *Config) BuildTree(mm *memmap.MemoryMap) (*settings.Tree, error) {
	if mm.Len() != c.MemSize {
		return nil, fmt.Errorf("drivers: image of %d bytes, %s %s expects %d",
			mm.Len(), c.Vendor, c.Model, c.MemSize)
	}
	return settings.NewTree(c.buildTree(c, mm)), nil
}

// UnknownModelError is a registry lookup miss. It is surfaced before any
// transport activity begins and is distinct from every transfer error.
type UnknownModelError struct {
	Vendor string
	Model  string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("drivers: no driver for %s %s", e.Vendor, e.Model)
}

var registry = make(map[string]*Config)

func key(vendor, model string) string {
	return vendor + "/" + model
}

// register adds a driver config. Called from driver init functions only;
// the registry is static configuration, not runtime-mutable state. A
// duplicate or inconsistent config is a bug in the driver and panics.
func register(cfg *Config) {
	k := key(cfg.Vendor, cfg.Model)
	if _, dup := registry[k]; dup {
		panic(fmt.Sprintf("drivers: duplicate driver %s", k))
	}
	if cfg.MemSize <= 0 {
		panic(fmt.Sprintf("drivers: %s has no memory size", k))
	}
	if cfg.buildTree == nil {
		panic(fmt.Sprintf("drivers: %s has no tree builder", k))
	}
	if err := cfg.Protocol.Validate(); err != nil {
		panic(fmt.Sprintf("drivers: %s: %v", k, err))
	}
	for _, f := range cfg.Fields {
		if err := f.Validate(); err != nil {
			panic(fmt.Sprintf("drivers: %s: %v", k, err))
		}
	}
	registry[k] = cfg
}

// Lookup returns the driver for a (vendor, model) identity.
func Lookup(vendor, model string) (*Config, error) {
	cfg, ok := registry[key(vendor, model)]
	if !ok {
		return nil, &UnknownModelError{Vendor: vendor, Model: model}
	}
	return cfg, nil
}

// Models lists every registered (vendor, model) pair in stable order, for
// external model-selection catalogs.
func Models() []ModelID {
	out := make([]ModelID, 0, len(registry))
	for _, cfg := range registry {
		out = append(out, ModelID{Vendor: cfg.Vendor, Model: cfg.Model})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Vendor != out[j].Vendor {
			return out[i].Vendor < out[j].Vendor
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// ModelID identifies one registered radio model.
type ModelID struct {
	Vendor string
	Model  string
}
