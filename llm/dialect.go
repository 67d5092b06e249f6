package llm

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Dialect speaks one provider's chat wire format.
type Dialect interface {
	Name() string
	// ChatPath is relative to the configured base URL.
	ChatPath() string
	// HealthPath is probed by IsAvailable. Empty skips the probe.
	HealthPath() string
	BuildRequest(req CompletionRequest) (any, error)
	ParseResponse(body []byte) (*CompletionResponse, error)
}

type dialectSet struct {
	mu     sync.RWMutex
	byName map[string]Dialect
}

var registered = &dialectSet{byName: map[string]Dialect{}}

// RegisterDialect makes d selectable by name. Dialect packages call it from
// init, so a blank import is enough:
//
//	import _ "github.com/kbukum/subtitler/llm/openai"
//
// Registering a name again replaces the earlier dialect.
func RegisterDialect(name string, d Dialect) {
	registered.mu.Lock()
	registered.byName[name] = d
	registered.mu.Unlock()
}

func GetDialect(name string) (Dialect, error) {
	registered.mu.RLock()
	d, ok := registered.byName[name]
	registered.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm: dialect %q is not registered (known: %v)", name, Dialects())
	}
	return d, nil
}

// Dialects lists the registered names in order.
func Dialects() []string {
	registered.mu.RLock()
	defer registered.mu.RUnlock()
	return slices.Sorted(maps.Keys(registered.byName))
}
