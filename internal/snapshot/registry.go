package snapshot

import "sync"

// TagName is the element name widgets register under.
const TagName = "stocks-snapshot"

// Factory builds an unconfigured widget.
type Factory func(opts ...Option) *Widget

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: map[string]Factory{}}

// Define registers f under tag unless the tag is taken. It reports whether
// f was registered.
func Define(tag string, f Factory) bool {
	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.factories[tag]; ok {
		return false
	}
	registry.factories[tag] = f
	return true
}

func Lookup(tag string) (Factory, bool) {
	registry.RLock()
	defer registry.RUnlock()
	f, ok := registry.factories[tag]
	return f, ok
}
