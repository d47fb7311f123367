package aior_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephin/aior"
)

type product struct {
	Name  string  `json:"name" validate:"min=1"`
	Price float64 `json:"price" validate:"gte=0"`
	Tags  []string
	Note  *string `json:"note" doc:"free text"`
	Limit int     `json:"limit" default:"10"`
	Skip  string  `json:"-"`
}

type catalog struct {
	Products []product `json:"products" validate:"dive"`
}

type renamed struct {
	ID int `json:"id"`
}

func (renamed) SchemaName() string { return "Renamed" }

func TestSchemaFor_fields(t *testing.T) {
	t.Parallel()

	s, err := aior.SchemaFor(reflect.TypeFor[product]())
	require.NoError(t, err)

	assert.Equal(t, "product", s.Name())
	assert.Equal(t, []string{"name", "price", "Tags", "note", "limit"}, s.FieldNames())
	assert.Equal(t, []string{"name", "price", "Tags"}, s.Required())
}

type page[T any] struct {
	Items []T `json:"items"`
}

func TestSchemaFor_genericName(t *testing.T) {
	t.Parallel()

	s := aior.MustSchema[page[Item]]()

	assert.Regexp(t, `^page_[A-Za-z0-9]+(_[A-Za-z0-9]+)*_Item$`, s.Name())
	assert.NotContains(t, s.Name(), "__")
}

func TestSchemaFor_cached(t *testing.T) {
	t.Parallel()

	a, err := aior.SchemaFor(reflect.TypeFor[product]())
	require.NoError(t, err)
	b, err := aior.SchemaFor(reflect.TypeFor[*product]())
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestSchemaFor_parentFieldsFirst(t *testing.T) {
	t.Parallel()

	s := aior.MustSchema[SignUpUser]()

	assert.Equal(t, []string{"username", "password", "address"}, s.FieldNames())
	assert.Equal(t, []string{"username", "password", "address"}, s.Required())
}

func TestSchemaFor_redeclaredFieldKeepsPosition(t *testing.T) {
	t.Parallel()

	type base struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	type child struct {
		base
		A *int `json:"a"`
	}

	s := aior.MustSchema[child]()
	assert.Equal(t, []string{"a", "b"}, s.FieldNames())
	assert.Equal(t, []string{"b"}, s.Required())
}

func TestSchemaFor_notStruct(t *testing.T) {
	t.Parallel()

	_, err := aior.SchemaFor(reflect.TypeFor[[]int]())
	require.ErrorIs(t, err, aior.ErrInvalidSchema)

	assert.Panics(t, func() { aior.MustSchema[string]() })
}

func TestSchemaFor_schemaNamer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Renamed", aior.MustSchema[renamed]().Name())
}

func TestParse_missingField(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[product](map[string]any{"nam": "Phone", "price": 1, "Tags": []any{}})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, aior.ValidationErrors{
		{Loc: []any{"name"}, Msg: "field required", Type: aior.KindMissing},
	}, verrs)
}

func TestParse_reportsEveryField(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[product](map[string]any{"price": "cheap"})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)
	assert.Equal(t, []any{"name"}, verrs[0].Loc)
	assert.Equal(t, []any{"price"}, verrs[1].Loc)
	assert.Equal(t, aior.KindFloat, verrs[1].Type)
	assert.Equal(t, []any{"Tags"}, verrs[2].Loc)
}

func TestParse_defaultsAndOptional(t *testing.T) {
	t.Parallel()

	p, err := aior.Parse[product](map[string]any{"name": "Phone", "price": 2.5, "Tags": []any{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, "Phone", p.Name)
	assert.InDelta(t, 2.5, p.Price, 0)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Nil(t, p.Note)
	assert.Equal(t, 10, p.Limit)
}

func TestParse_noneNotAllowed(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[product](map[string]any{"name": nil, "price": 1, "Tags": []any{}, "note": nil})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, aior.ValidationErrors{
		{Loc: []any{"name"}, Msg: "none is not an allowed value", Type: aior.KindNone},
	}, verrs)
}

func TestParse_stringSources(t *testing.T) {
	t.Parallel()

	type params struct {
		ID    int           `json:"id"`
		Ratio float64       `json:"ratio"`
		On    bool          `json:"on"`
		At    time.Time     `json:"at"`
		Wait  time.Duration `json:"wait"`
	}

	p, err := aior.Parse[params](map[string]string{
		"id":    "1",
		"ratio": "0.5",
		"on":    "yes",
		"at":    "2020-07-30T10:00:00Z",
		"wait":  "1m30s",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, p.ID)
	assert.InDelta(t, 0.5, p.Ratio, 0)
	assert.True(t, p.On)
	assert.Equal(t, time.Date(2020, 7, 30, 10, 0, 0, 0, time.UTC), p.At)
	assert.Equal(t, 90*time.Second, p.Wait)
}

func TestParse_nestedLocations(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[Shop](map[string]any{
		"items": []any{
			map[string]any{"name": "TV", "price": 10, "address": map[string]any{"province": "p", "city": "c"}},
			map[string]any{"name": "Phone", "price": "x", "address": map[string]any{"province": "p"}},
		},
	})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, aior.ValidationErrors{
		{Loc: []any{"items", 1, "price"}, Msg: "value is not a valid float", Type: aior.KindFloat},
		{Loc: []any{"items", 1, "address", "city"}, Msg: "field required", Type: aior.KindMissing},
	}, verrs)
}

func TestParse_notAnObject(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[product]("Phone")

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, aior.ValidationErrors{
		{Loc: []any{"__root__"}, Msg: "value is not a valid dict", Type: aior.KindDict},
	}, verrs)
}

func TestParse_constraints(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw  map[string]any
		want aior.ValidationErrors
	}{
		"valid": {
			raw: map[string]any{"name": "TV", "price": 0, "Tags": []any{}},
		},
		"empty name and negative price": {
			raw: map[string]any{"name": "", "price": -1, "Tags": []any{}},
			want: aior.ValidationErrors{
				{Loc: []any{"name"}, Msg: "ensure this value has at least 1 items or characters", Type: "value_error.min"},
				{Loc: []any{"price"}, Msg: "ensure this value is greater than or equal to 0", Type: "value_error.gte"},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := aior.Parse[product](tt.raw)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			var verrs aior.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.want, verrs)
		})
	}
}

func TestParse_constraintLocations(t *testing.T) {
	t.Parallel()

	_, err := aior.Parse[catalog](map[string]any{
		"products": []any{
			map[string]any{"name": "TV", "price": 1, "Tags": []any{}},
			map[string]any{"name": "", "price": 1, "Tags": []any{}},
		},
	})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, []any{"products", 1, "name"}, verrs[0].Loc)
}

func TestParse_embeddedConstraint(t *testing.T) {
	t.Parallel()

	type Credentials struct {
		Username string `json:"username"`
		Password string `json:"password" validate:"min=8"`
	}
	type signUp struct {
		Credentials
		Email string `json:"email" validate:"email"`
	}

	_, err := aior.Parse[signUp](map[string]any{"username": "jane", "password": "short", "email": "nope"})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, []any{"password"}, verrs[0].Loc)
	assert.Equal(t, []any{"email"}, verrs[1].Loc)
	assert.Equal(t, "value is not a valid email address", verrs[1].Msg)
}

func TestParse_constraintsAlongsideDecodeErrors(t *testing.T) {
	t.Parallel()

	type listing struct {
		Title string   `json:"title"`
		Code  string   `json:"code" validate:"min=3"`
		Tags  []string `json:"tags" validate:"min=1"`
	}

	_, err := aior.Parse[listing](map[string]any{"code": "x", "tags": []any{nil}})

	var verrs aior.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, aior.ValidationErrors{
		{Loc: []any{"title"}, Msg: "field required", Type: aior.KindMissing},
		{Loc: []any{"tags", 0}, Msg: "none is not an allowed value", Type: aior.KindNone},
		{Loc: []any{"code"}, Msg: "ensure this value has at least 3 items or characters", Type: "value_error.min"},
	}, verrs)
}

func TestSchema_Describe(t *testing.T) {
	t.Parallel()

	js := aior.MustSchema[product]().Describe()

	assert.Equal(t, "product", js.Title)
	assert.Equal(t, "object", js.Type)
	assert.Equal(t, []string{"name", "price", "Tags", "note", "limit"}, js.Properties.Names())
	assert.Equal(t, []string{"name", "price", "Tags"}, js.Required)

	name, ok := js.Properties.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Name", name.Title)
	require.NotNil(t, name.MinLength)
	assert.Equal(t, 1, *name.MinLength)

	price, _ := js.Properties.Get("price")
	assert.Equal(t, "number", price.Type)
	require.NotNil(t, price.Minimum)
	assert.InDelta(t, 0, *price.Minimum, 0)

	tags, _ := js.Properties.Get("Tags")
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)

	note, _ := js.Properties.Get("note")
	assert.Equal(t, "free text", note.Description)

	limit, _ := js.Properties.Get("limit")
	assert.Equal(t, "10", limit.Default)
}

func TestSchema_DescribeReferencesNamedTypes(t *testing.T) {
	t.Parallel()

	js := aior.MustSchema[Item]().Describe()

	address, ok := js.Properties.Get("address")
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Address", address.Ref)
	assert.Empty(t, address.Title)
}

func TestProperties_keepOrder(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(aior.MustSchema[Item]().Describe())
	require.NoError(t, err)

	s := string(data)
	order := []string{`"name"`, `"description"`, `"price"`, `"tax"`, `"address"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		require.Greater(t, i, last, "%s out of order in %s", key, s)
		last = i
	}

	var back aior.JSONSchema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"name", "description", "price", "tax", "address"}, back.Properties.Names())
}

func TestFieldTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"user_name": "User Name",
		"user_id":   "User Id",
		"q":         "Q",
	}
	for in, want := range tests {
		assert.Equal(t, want, aior.FieldTitle(in), in)
	}
}
