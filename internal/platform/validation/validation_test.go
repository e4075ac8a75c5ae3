package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Slug  string  `yaml:"slug" validate:"required,slug"`
	Name  string  `yaml:"name" validate:"required"`
	Price float64 `yaml:"min_price" validate:"gte=0"`
	Inner inner   `yaml:"inner"`
}

type inner struct {
	Email string `yaml:"email" validate:"omitempty,email"`
}

func TestStructReportsYAMLFieldNames(t *testing.T) {
	errs := Struct(record{Slug: "Bad Slug", Price: -1, Inner: inner{Email: "nope"}})
	require.Len(t, errs, 4)

	byField := map[string]FieldError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	require.Equal(t, "slug", byField["slug"].Tag)
	require.Contains(t, byField["slug"].Message, "lower-case")
	require.Equal(t, "required", byField["name"].Tag)
	require.Equal(t, "gte", byField["min_price"].Tag)
	require.Equal(t, "email", byField["inner.email"].Tag)
}

func TestStructValid(t *testing.T) {
	require.Nil(t, Struct(record{Slug: "commercial-construction", Name: "Commercial Construction"}))
}

func TestIsSlug(t *testing.T) {
	require.True(t, IsSlug("disaster-recovery"))
	require.True(t, IsSlug("brandon"))
	require.False(t, IsSlug("Brandon"))
	require.False(t, IsSlug("double--hyphen"))
	require.False(t, IsSlug("-leading"))
	require.False(t, IsSlug(""))
}
