// Package jsonmapper provides the application's JSON object mapper.
//
// A Mapper wraps a json-iterator configuration and lets callers register
// modules: named sets of custom serializers and deserializers keyed by Go
// type. Modules must be registered before the mapper encodes or decodes
// anything, because json-iterator caches codecs per type on first use.
package jsonmapper

import (
	"errors"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// ErrMapperInUse is returned when a module is registered after first use.
var ErrMapperInUse = errors.New("jsonmapper: modules must be registered before first use")

// Mapper encodes and decodes JSON using the registered modules.
type Mapper struct {
	mu      sync.Mutex
	api     jsoniter.API
	modules []string
	used    bool
}

// New creates a mapper with no custom modules.
func New() *Mapper {
	return &Mapper{
		api: jsoniter.Config{
			EscapeHTML:             true,
			SortMapKeys:            true,
			ValidateJsonRawMessage: true,
		}.Froze(),
	}
}

// RegisterModule installs the module's serializers and deserializers.
func (m *Mapper) RegisterModule(module *Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.used {
		return ErrMapperInUse
	}
	m.api.RegisterExtension(&moduleExtension{module: module})
	m.modules = append(m.modules, module.Name())
	return nil
}

// Modules returns the names of the registered modules in registration order.
func (m *Mapper) Modules() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.modules...)
}

// Marshal returns the JSON encoding of v.
func (m *Mapper) Marshal(v interface{}) ([]byte, error) {
	return m.codec().Marshal(v)
}

// MarshalIndent is like Marshal but applies indentation.
func (m *Mapper) MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return m.codec().MarshalIndent(v, prefix, indent)
}

// Unmarshal parses JSON data into v.
func (m *Mapper) Unmarshal(data []byte, v interface{}) error {
	return m.codec().Unmarshal(data, v)
}

// NewEncoder returns an encoder writing to w.
func (m *Mapper) NewEncoder(w io.Writer) *jsoniter.Encoder {
	return m.codec().NewEncoder(w)
}

// NewDecoder returns a decoder reading from r.
func (m *Mapper) NewDecoder(r io.Reader) *jsoniter.Decoder {
	return m.codec().NewDecoder(r)
}

func (m *Mapper) codec() jsoniter.API {
	m.mu.Lock()
	m.used = true
	m.mu.Unlock()
	return m.api
}
