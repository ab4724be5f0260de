package jsonmapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name     string     `json:"name"`
	Modified time.Time  `json:"modified"`
	Birth    *time.Time `json:"birth,omitempty"`
}

func newDateTimeMapper(t *testing.T) *Mapper {
	t.Helper()
	m := New()
	require.NoError(t, m.RegisterModule(NewDateTimeModule(time.UTC)))
	return m
}

func TestMapper_DateTimeRoundTrip(t *testing.T) {
	m := newDateTimeMapper(t)
	birth := time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC)
	in := record{
		Name:     "Jeff",
		Modified: time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
		Birth:    &birth,
	}

	data, err := m.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jeff","modified":"2024-03-15T10:30:00","birth":"1990-05-01T00:00:00"}`, string(data))

	var out record
	require.NoError(t, m.Unmarshal(data, &out))
	assert.True(t, in.Modified.Equal(out.Modified))
	require.NotNil(t, out.Birth)
	assert.True(t, birth.Equal(*out.Birth))
}

func TestMapper_FractionalSeconds(t *testing.T) {
	m := newDateTimeMapper(t)
	in := record{Modified: time.Date(2024, time.January, 2, 3, 4, 5, 250_000_000, time.UTC)}

	data, err := m.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2024-01-02T03:04:05.25"`)

	var out record
	require.NoError(t, m.Unmarshal(data, &out))
	assert.True(t, in.Modified.Equal(out.Modified))
}

func TestMapper_NullAndMissing(t *testing.T) {
	m := newDateTimeMapper(t)

	var out record
	require.NoError(t, m.Unmarshal([]byte(`{"name":"x","modified":null,"birth":null}`), &out))
	assert.True(t, out.Modified.IsZero())
	assert.Nil(t, out.Birth)
}

func TestMapper_RejectsInvalidDateTime(t *testing.T) {
	m := newDateTimeMapper(t)

	var out record
	err := m.Unmarshal([]byte(`{"modified":"15/03/2024"}`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date-time")

	err = m.Unmarshal([]byte(`{"modified":12345}`), &out)
	require.Error(t, err)
}

func TestMapper_RegisterAfterUse(t *testing.T) {
	m := New()
	_, err := m.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)

	assert.ErrorIs(t, m.RegisterModule(NewDateTimeModule(time.UTC)), ErrMapperInUse)
}

func TestMapper_Modules(t *testing.T) {
	m := newDateTimeMapper(t)
	assert.Equal(t, []string{DateTimeModuleName}, m.Modules())
}
