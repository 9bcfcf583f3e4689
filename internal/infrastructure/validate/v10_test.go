package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id" validate:"required"`
}

type form struct {
	Email string  `json:"email" validate:"required,email"`
	Score int     `json:"score" validate:"min=0,max=100"`
	Items []*item `json:"items" validate:"dive"`
}

func TestPlaygroundV10_Struct(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Struct(&form{Email: "a@b.com", Score: 50}))

	errs := v.Struct(&form{Email: "nope", Score: 120, Items: []*item{{ID: "x"}, {}}})
	require.Len(t, errs, 3)

	domains := make([]string, 0, len(errs))
	for _, e := range errs {
		domains = append(domains, e.Domain)
		assert.NotEmpty(t, e.Reason)
	}
	assert.ElementsMatch(t, []string{"email", "score", "items[1].id"}, domains)
}

func TestPlaygroundV10_WithLocale(t *testing.T) {
	v := NewValidator()

	en := v.Struct(&form{Score: 1})
	zh := v.WithLocale("zh").Struct(&form{Score: 1})
	require.Len(t, en, 1)
	require.Len(t, zh, 1)
	assert.Equal(t, en[0].Domain, zh[0].Domain)
	assert.NotEqual(t, en[0].Reason, zh[0].Reason)
}

func TestPlaygroundV10_Empty(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Empty("answers", map[string]string{"q1": "a"}))
	errs := v.Empty("ts", "")
	require.Len(t, errs, 1)
	assert.Equal(t, "ts", errs[0].Domain)
}

func TestPlaygroundV10_AllEmpty(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.AllEmpty([]string{"name", "email"}, "", "a@b.com"))
	fe := v.AllEmpty([]string{"name", "email"}, "", "")
	require.NotNil(t, fe)
	assert.Equal(t, "name,email", fe.Domain)
	assert.Panics(t, func() { v.AllEmpty([]string{"name"}, "", "") })
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "id: required; score: too big", Join([]*FieldError{
		NewFieldError("id", "required"),
		NewFieldError("score", "too big"),
	}))
}
