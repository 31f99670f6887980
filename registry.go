package synfuzz

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"
	"golang.org/x/exp/maps"
)

// RuleID is the stable index of a rule in a Registry.
type RuleID uint32

// Registry maps rule names to generators, allowing rules to refer to each
// other (and themselves) by name.
//
// Generators are stored in an arena indexed by RuleID. Registering a name that
// already exists replaces the generator in place, so the RuleID and any
// references to the name observe the new definition.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	rules  []Generator
	names  []string
	index  map[string]RuleID
	depths *depthTable
	// Incremented on every registration.
	version atomic.Uint64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]RuleID{}}
}

// Register g under name, replacing any existing definition of name.
func (r *Registry) Register(name string, g Generator) (RuleID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(name, g)
}

// Define registers g under name, failing if name is already registered.
func (r *Registry) Define(name string, g Generator) (RuleID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[name]; ok {
		return 0, &DuplicateRuleError{Name: name}
	}
	return r.register(name, g)
}

func (r *Registry) register(name string, g Generator) (RuleID, error) {
	if g == nil {
		return 0, invalidf("rule %q has no generator", name)
	}
	r.depths = nil
	r.version.Add(1)
	if id, ok := r.index[name]; ok {
		r.rules[id] = g
		return id, nil
	}
	slot, err := safecast.Conv[uint32](len(r.rules))
	if err != nil {
		return 0, err
	}
	id := RuleID(slot)
	r.rules = append(r.rules, g)
	r.names = append(r.names, name)
	r.index[name] = id
	return id, nil
}

// Lookup the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.index[name]
	if !ok {
		return nil, &UnknownRuleError{Name: name}
	}
	return r.rules[id], nil
}

// ID returns the RuleID of name.
func (r *Registry) ID(name string) (RuleID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.index[name]
	return id, ok
}

// Rule returns the name and generator stored at id.
func (r *Registry) Rule(id RuleID) (string, Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.rules) {
		return "", nil, false
	}
	return r.names[id], r.rules[id], true
}

// Names of all registered rules, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := maps.Keys(r.index)
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Ref returns a generator that delegates to the rule registered under name.
//
// The rule need not be registered yet; resolution happens on every use and
// fails with an UnknownRuleError if the name is still missing.
func (r *Registry) Ref(name string) Generator {
	return &reference{registry: r, name: name}
}

// Fuzzer returns a Fuzzer rooted at the rule name.
func (r *Registry) Fuzzer(name string, options ...Option) (*Fuzzer, error) {
	if _, err := r.Lookup(name); err != nil {
		return nil, err
	}
	return New(r.Ref(name), options...)
}

const infiniteDepth = math.MaxInt32

func addDepth(a, b int) int {
	if a >= infiniteDepth || b >= infiniteDepth {
		return infiniteDepth
	}
	return a + b
}

type depthKey struct {
	registry *Registry
	name     string
}

// depthTable holds the minimum derivation depth of every rule reachable from
// the registry it was computed for, including rules of other registries
// referenced along the way.
type depthTable struct {
	versions map[*Registry]uint64
	rules    map[depthKey]Generator
	depths   map[depthKey]int
}

func (t *depthTable) lookup(registry *Registry, name string) int {
	if t == nil {
		return registry.depthOf(name)
	}
	if _, ok := t.versions[registry]; !ok {
		t.add(registry)
	}
	if d, ok := t.depths[depthKey{registry, name}]; ok {
		return d
	}
	return infiniteDepth
}

// add snapshots the rules of r into the table.
func (t *depthTable) add(r *Registry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t.versions[r] = r.version.Load()
	for name, id := range r.index {
		key := depthKey{r, name}
		t.rules[key] = r.rules[id]
		t.depths[key] = infiniteDepth
	}
}

// current reports whether no registry in the table has changed since it was
// snapshot.
func (t *depthTable) current() bool {
	for r, version := range t.versions {
		if r.version.Load() != version {
			return false
		}
	}
	return true
}

// depthOf returns the minimum derivation depth of the rule name, computing the
// table if it is missing or stale.
func (r *Registry) depthOf(name string) int {
	r.mu.RLock()
	table := r.depths
	r.mu.RUnlock()
	if table == nil || !table.current() {
		table = r.computeDepths()
	}
	if d, ok := table.depths[depthKey{r, name}]; ok {
		return d
	}
	return infiniteDepth
}

// computeDepths iterates to a fixed point over a snapshot of the rules of r
// and of every registry they reach. Lookups during the pass resolve against
// the table being built, never another registry's cache, and no lock is held
// while generators are visited.
func (r *Registry) computeDepths() *depthTable {
	table := &depthTable{
		versions: map[*Registry]uint64{},
		rules:    map[depthKey]Generator{},
		depths:   map[depthKey]int{},
	}
	table.add(r)
	for changed := true; changed; {
		changed = false
		size := len(table.rules)
		for key, g := range table.rules {
			if d := g.minDepth(table); d < table.depths[key] {
				table.depths[key] = d
				changed = true
			}
		}
		if len(table.rules) != size {
			changed = true
		}
	}

	for reg, version := range table.versions {
		reg.mu.Lock()
		if reg.version.Load() == version {
			reg.depths = table
		}
		reg.mu.Unlock()
	}
	return table
}
