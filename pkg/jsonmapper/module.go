package jsonmapper

import (
	"fmt"
	"reflect"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

// Serializer writes a value of its registered type to the stream.
type Serializer interface {
	Serialize(value interface{}, stream *jsoniter.Stream) error
}

// Deserializer reads a value of its registered type from the iterator.
type Deserializer interface {
	Deserialize(iter *jsoniter.Iterator) (interface{}, error)
}

// Module is a named group of custom codecs.
type Module struct {
	name          string
	serializers   map[reflect.Type]Serializer
	deserializers map[reflect.Type]Deserializer
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		name:          name,
		serializers:   make(map[reflect.Type]Serializer),
		deserializers: make(map[reflect.Type]Deserializer),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// AddSerializer registers s for values of type t.
func (m *Module) AddSerializer(t reflect.Type, s Serializer) *Module {
	m.serializers[t] = s
	return m
}

// AddDeserializer registers d for values of type t.
func (m *Module) AddDeserializer(t reflect.Type, d Deserializer) *Module {
	m.deserializers[t] = d
	return m
}

type moduleExtension struct {
	jsoniter.DummyExtension
	module *Module
}

// Pointer types are claimed as well: otherwise json-iterator would pick the
// element's own json.Marshaler for *T fields.
func (e *moduleExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	t := typ.Type1()
	if s, ok := e.module.serializers[t]; ok {
		return &serializerEncoder{typ: t, serializer: s}
	}
	if t.Kind() == reflect.Ptr {
		if s, ok := e.module.serializers[t.Elem()]; ok {
			return &pointerEncoder{typ: t, elem: &serializerEncoder{typ: t.Elem(), serializer: s}}
		}
	}
	return nil
}

func (e *moduleExtension) CreateDecoder(typ reflect2.Type) jsoniter.ValDecoder {
	t := typ.Type1()
	if d, ok := e.module.deserializers[t]; ok {
		return &deserializerDecoder{typ: t, deserializer: d}
	}
	if t.Kind() == reflect.Ptr {
		if d, ok := e.module.deserializers[t.Elem()]; ok {
			return &pointerDecoder{typ: t, elem: &deserializerDecoder{typ: t.Elem(), deserializer: d}}
		}
	}
	return nil
}

type serializerEncoder struct {
	typ        reflect.Type
	serializer Serializer
}

func (e *serializerEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return reflect.NewAt(e.typ, ptr).Elem().IsZero()
}

func (e *serializerEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	value := reflect.NewAt(e.typ, ptr).Elem().Interface()
	if err := e.serializer.Serialize(value, stream); err != nil && stream.Error == nil {
		stream.Error = err
	}
}

type deserializerDecoder struct {
	typ          reflect.Type
	deserializer Deserializer
}

func (d *deserializerDecoder) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	target := reflect.NewAt(d.typ, ptr).Elem()
	if iter.ReadNil() {
		target.SetZero()
		return
	}

	value, err := d.deserializer.Deserialize(iter)
	if err != nil {
		iter.ReportError("decode "+d.typ.String(), err.Error())
		return
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Type() != d.typ {
		iter.ReportError("decode "+d.typ.String(), fmt.Sprintf("deserializer returned %T", value))
		return
	}
	target.Set(rv)
}

type pointerEncoder struct {
	typ  reflect.Type
	elem *serializerEncoder
}

func (e *pointerEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return reflect.NewAt(e.typ, ptr).Elem().IsNil()
}

func (e *pointerEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	p := reflect.NewAt(e.typ, ptr).Elem()
	if p.IsNil() {
		stream.WriteNil()
		return
	}
	e.elem.Encode(p.UnsafePointer(), stream)
}

type pointerDecoder struct {
	typ  reflect.Type
	elem *deserializerDecoder
}

func (d *pointerDecoder) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	target := reflect.NewAt(d.typ, ptr).Elem()
	if iter.ReadNil() {
		target.SetZero()
		return
	}

	value := reflect.New(d.typ.Elem())
	d.elem.Decode(value.UnsafePointer(), iter)
	if iter.Error == nil {
		target.Set(value)
	}
}
