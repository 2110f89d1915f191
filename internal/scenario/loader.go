package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Loader reads scenario files (<id>.yaml) from a file system.
type Loader struct {
	FS fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

// NewDirLoader reads scenarios from a directory on disk.
func NewDirLoader(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// Builtin returns the loader for the scenarios shipped with the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return NewLoader(sub)
}

// Load reads and validates a single scenario by id.
func (l *Loader) Load(id string) (*Scenario, error) {
	data, err := fs.ReadFile(l.FS, id+".yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(id, data)
}

// Parse decodes YAML into a scenario. An empty id field is filled from id.
func Parse(id string, data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}
	if s.ID == "" {
		s.ID = id
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	return &s, nil
}

// List loads every scenario file. Invalid files are logged and skipped.
func (l *Loader) List() ([]*Scenario, error) {
	entries, err := fs.ReadDir(l.FS, ".")
	if err != nil {
		return nil, err
	}
	var out []*Scenario
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		s, err := l.Load(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping scenario")
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Catalog is the set of scenarios a server offers: the built-ins plus, when
// configured, a directory whose files override built-ins with the same id.
type Catalog struct {
	loaders []*Loader

	mu        sync.RWMutex
	scenarios map[string]*Scenario
}

// NewCatalog loads every scenario from loaders; later loaders win.
func NewCatalog(loaders ...*Loader) (*Catalog, error) {
	c := &Catalog{loaders: loaders}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload rereads every loader. On error the previous set stays in place.
func (c *Catalog) Reload() error {
	next := make(map[string]*Scenario)
	for _, l := range c.loaders {
		list, err := l.List()
		if err != nil {
			return err
		}
		for _, s := range list {
			next[s.ID] = s
		}
	}
	c.mu.Lock()
	c.scenarios = next
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Get(id string) (*Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenarios[id]
	return s, ok
}

// List returns every scenario sorted by id.
func (c *Catalog) List() []*Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
