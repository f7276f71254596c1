package validator

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

// cacheBase anchors relative $id values such as "/fragment/1.0.0".
const cacheBase = "https://schemaguard.local/"

// DuplicateIDError reports a Register call for an $id that is still cached.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("schema with $id %q is already registered", e.ID)
}

// UnknownIDError reports a lookup for an $id that is not cached.
type UnknownIDError struct {
	ID string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("no schema registered with $id %q", e.ID)
}

// Cache holds compiled schemas by $id. Registering an $id twice fails until it
// is evicted, so callers register before use and evict right after. The cache
// is one logical resource: a mutex guards it, and the suite drives it from a
// single goroutine.
type Cache struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
	logger  *zap.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for register/evict events.
func WithLogger(l *zap.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{schemas: map[string]*jsonschema.Schema{}, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register compiles schema and stores it under id.
func (c *Cache) Register(id string, schema map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schemas[id]; ok {
		return &DuplicateIDError{ID: id}
	}

	loc, err := resourceURL(id)
	if err != nil {
		return err
	}
	comp := jsonschema.NewCompiler()
	comp.DefaultDraft(jsonschema.Draft7)
	if err := comp.AddResource(loc, aliasDraft07(schema)); err != nil {
		return fmt.Errorf("validator: add schema %q: %w", id, err)
	}
	compiled, err := comp.Compile(loc)
	if err != nil {
		return fmt.Errorf("validator: compile schema %q: %w", id, err)
	}
	c.schemas[id] = compiled
	c.logger.Debug("schema registered", zap.String("id", id), zap.String("location", loc))
	return nil
}

// Evict removes id from the cache. Evicting an unknown id is a no-op.
func (c *Cache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schemas[id]; !ok {
		return
	}
	delete(c.schemas, id)
	c.logger.Debug("schema evicted", zap.String("id", id))
}

// Validate checks instance against the schema registered under id. Failures
// are *jsonschema.ValidationError values; see Flatten.
func (c *Cache) Validate(id string, instance any) error {
	c.mu.Lock()
	compiled, ok := c.schemas[id]
	c.mu.Unlock()
	if !ok {
		return &UnknownIDError{ID: id}
	}
	return compiled.Validate(instance)
}

// Len reports the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.schemas)
}

// resourceURL maps an $id onto an absolute location for the compiler.
func resourceURL(id string) (string, error) {
	base, _ := url.Parse(cacheBase)
	if id == "" {
		return cacheBase + "schema.json", nil
	}
	ref, err := url.Parse(id)
	if err != nil {
		return "", fmt.Errorf("validator: invalid $id %q: %w", id, err)
	}
	ref.Fragment = ""
	if ref.IsAbs() {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

// aliasDraft07 rewrites an https draft-07 $schema to the http form the
// compiler knows, so no remote lookup happens. The input is never modified.
func aliasDraft07(schema map[string]any) map[string]any {
	s, _ := schema["$schema"].(string)
	if !strings.HasPrefix(s, draft07HTTPSURL) {
		return schema
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	out["$schema"] = Draft07URL + strings.TrimPrefix(s, draft07HTTPSURL)
	return out
}
