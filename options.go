package krill

import "sync"

// OptionKey identifies a solver configuration option.
type OptionKey string

// Recognized options.
const (
	// ProduceModels enables model queries through Session.Value.
	ProduceModels OptionKey = "produce-models"

	// Preprocess enables formula rewriting ahead of solving. Locked
	// once a session built from the option set has executed a check.
	Preprocess OptionKey = "preprocess"

	// Verbosity controls engine progress output. Zero is silent.
	Verbosity OptionKey = "verbosity"
)

type optionSpec struct {
	def         interface{}
	startLocked bool
}

var optionSchema = map[OptionKey]optionSpec{
	ProduceModels: {def: false},
	Preprocess:    {def: true, startLocked: true},
	Verbosity:     {def: uint(0)},
}

// OptionSet is a validated mapping of option keys to values. Every key
// has a declared type and a default; unknown keys and wrongly typed
// values are rejected at set time.
//
// A session copies the option set at construction, so mutating the set
// afterwards never affects an existing session. Keys flagged as
// start-locked additionally reject mutation once any session built from
// the set has executed a check.
type OptionSet struct {
	mu     sync.Mutex
	values map[OptionKey]interface{}
	locked bool
}

// NewOptionSet returns a new option set holding only defaults.
func NewOptionSet() *OptionSet {
	return &OptionSet{values: make(map[OptionKey]interface{})}
}

// Set assigns value to key. Returns ErrInvalidOption for unknown keys,
// ErrTypeMismatch if the value type disagrees with the key's declared
// type, and ErrLockedOption for start-locked keys once a session built
// from this set has checked.
func (o *OptionSet) Set(key OptionKey, value interface{}) error {
	spec, ok := optionSchema[key]
	if !ok {
		return ErrInvalidOption
	}
	switch spec.def.(type) {
	case bool:
		if _, ok := value.(bool); !ok {
			return ErrTypeMismatch
		}
	case uint:
		if _, ok := value.(uint); !ok {
			return ErrTypeMismatch
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.locked && spec.startLocked {
		return ErrLockedOption
	}
	o.values[key] = value
	return nil
}

// Get returns the value assigned to key, or the schema default if the
// key is unset. Returns ErrInvalidOption for unknown keys.
func (o *OptionSet) Get(key OptionKey) (interface{}, error) {
	spec, ok := optionSchema[key]
	if !ok {
		return nil, ErrInvalidOption
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.values[key]; ok {
		return v, nil
	}
	return spec.def, nil
}

// Bool returns the boolean value of key. Panics if key is not a
// recognized boolean option.
func (o *OptionSet) Bool(key OptionKey) bool {
	v, err := o.Get(key)
	assert(err == nil, "unknown option: %s", key)
	b, ok := v.(bool)
	assert(ok, "option %s is not a boolean", key)
	return b
}

// Uint returns the unsigned integer value of key. Panics if key is not
// a recognized unsigned integer option.
func (o *OptionSet) Uint(key OptionKey) uint {
	v, err := o.Get(key)
	assert(err == nil, "unknown option: %s", key)
	u, ok := v.(uint)
	assert(ok, "option %s is not an unsigned integer", key)
	return u
}

// clone returns an unlocked copy of the option set.
func (o *OptionSet) clone() *OptionSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	values := make(map[OptionKey]interface{}, len(o.values))
	for k, v := range o.values {
		values[k] = v
	}
	return &OptionSet{values: values}
}

// lock freezes the start-locked keys. Called by a session on its first
// check.
func (o *OptionSet) lock() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.locked = true
}
