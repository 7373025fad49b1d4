package dtox_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_ScalarCoercion(t *testing.T) {
	type target struct {
		Count   int       `dto:"count"`
		Ratio   float64   `dto:"ratio"`
		Active  bool      `dto:"active"`
		Label   string    `dto:"label"`
		Size    uint8     `dto:"size"`
		At      time.Time `dto:"at"`
		Nick    *string   `dto:"nick"`
		Numbers []int     `dto:"numbers"`
	}

	var got target
	err := dtox.Hydrate(&got, dtox.Mapping{
		"count":   "12",
		"ratio":   json.Number("0.5"),
		"active":  "true",
		"label":   7,
		"size":    float64(200),
		"at":      "2024-03-01T10:00:00Z",
		"nick":    "mk",
		"numbers": []any{float64(1), "2"},
	}, false, dtox.KeyStyleDefault)
	require.NoError(t, err)

	assert.Equal(t, 12, got.Count)
	assert.Equal(t, 0.5, got.Ratio)
	assert.True(t, got.Active)
	assert.Equal(t, "7", got.Label)
	assert.Equal(t, uint8(200), got.Size)
	assert.Equal(t, 2024, got.At.Year())
	require.NotNil(t, got.Nick)
	assert.Equal(t, "mk", *got.Nick)
	assert.Equal(t, []int{1, 2}, got.Numbers)
}

func TestHydrate_SingleValueIntoList(t *testing.T) {
	var got struct {
		Tags []string `dto:"tags"`
	}
	require.NoError(t, dtox.Hydrate(&got, dtox.Mapping{"tags": "solo"}, false, dtox.KeyStyleDefault))
	assert.Equal(t, []string{"solo"}, got.Tags)
}

func TestHydrate_ConversionErrors(t *testing.T) {
	type target struct {
		Count int    `dto:"count"`
		Small int8   `dto:"small"`
		Name  string `dto:"name"`
	}

	cases := map[string]dtox.Mapping{
		"fractional": {"count": 1.5},
		"overflow":   {"small": 300},
		"garbage":    {"count": "twelve"},
		"composite":  {"name": map[string]any{"x": 1}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			var got target
			err := dtox.Hydrate(&got, data, false, dtox.KeyStyleDefault)
			require.Error(t, err)
			assert.True(t, errx.IsCode(err, dtox.ErrTypeConversion))
			assert.True(t, dtox.IsConstructionError(err))
		})
	}
}

func TestHydrate_InvalidTarget(t *testing.T) {
	var notStruct int
	assert.True(t, errx.IsCode(dtox.Hydrate(&notStruct, nil, false, ""), dtox.ErrInvalidTarget))
	assert.True(t, errx.IsCode(dtox.Hydrate(UserDTO{}, nil, false, ""), dtox.ErrInvalidTarget))
}

func TestHydrate_NestedDTOs(t *testing.T) {
	var c CustomerDTO
	err := c.FromMapping(dtox.Mapping{
		"firstName":   "Ann",
		"homeAddress": map[string]any{"street": "Main St", "postalCode": "1000"},
		"previousAddresses": []any{
			map[string]any{"street": "Old St"},
		},
	}, false, dtox.KeyStyleDefault)
	require.NoError(t, err)

	assert.Equal(t, "Main St", c.Address.Street)
	require.Len(t, c.Previous, 1)
	assert.Equal(t, "Old St", c.Previous[0].Street)

	assert.Equal(t, dtox.Mapping{
		"firstName":         "Ann",
		"homeAddress":       dtox.Mapping{"street": "Main St", "postalCode": "1000"},
		"previousAddresses": []any{dtox.Mapping{"street": "Old St", "postalCode": ""}},
	}, c.ToMapping())
}

func TestHydrate_NestedMissingFieldPath(t *testing.T) {
	var c CustomerDTO
	err := c.FromMapping(dtox.Mapping{
		"firstName":   "Ann",
		"homeAddress": map[string]any{"postalCode": "1000"},
	}, false, dtox.KeyStyleDefault)
	require.Error(t, err)

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, dtox.ErrMissingField, xerr.Code)
	assert.Equal(t, "homeAddress.street", xerr.Details["field"])
}

func TestKeyStyles(t *testing.T) {
	var c CustomerDTO
	err := c.FromMapping(dtox.Mapping{
		"first_name":   "Ann",
		"home_address": map[string]any{"street": "Main St", "postal_code": "1000"},
	}, false, dtox.KeyStyleUnderscored)
	require.NoError(t, err)
	assert.Equal(t, "1000", c.Address.PostalCode)

	dumped := dtox.Dump(&c, dtox.KeyStyleDashed)
	assert.Equal(t, "Ann", dumped["first-name"])
	assert.Equal(t, dtox.Mapping{"street": "Main St", "postal-code": "1000"}, dumped["home-address"])
}

func TestKeyStyle_Key(t *testing.T) {
	assert.Equal(t, "user_id", dtox.KeyStyleUnderscored.Key("userID"))
	assert.Equal(t, "http-status", dtox.KeyStyleDashed.Key("HTTPStatus"))
	assert.Equal(t, "address_line2", dtox.KeyStyleUnderscored.Key("addressLine2"))
	assert.Equal(t, "firstName", dtox.KeyStyleDefault.Key("firstName"))

	style, ok := dtox.ParseKeyStyle("snake")
	assert.True(t, ok)
	assert.Equal(t, dtox.KeyStyleUnderscored, style)
	_, ok = dtox.ParseKeyStyle("pascal")
	assert.False(t, ok)
}

func TestDump_FallbackNames(t *testing.T) {
	type plain struct {
		UserID   string
		Nickname string `json:"nick,omitempty"`
		Skipped  string `json:"-"`
		Hidden   string `dto:"-"`
		internal string
	}
	got := dtox.Dump(plain{UserID: "u1", internal: "x"}, dtox.KeyStyleDefault)
	assert.Equal(t, dtox.Mapping{"userID": "u1"}, got)
}

func TestTagRules(t *testing.T) {
	rules := dtox.RulesOf(&UserDTO{})

	require.Contains(t, rules, "name")
	assert.True(t, rules["name"].Required)
	assert.Equal(t, 2, *rules["name"].MinLength)
	assert.Equal(t, 50, *rules["name"].MaxLength)
	assert.Equal(t, "^[^@]+@[^@]+$", rules["email"].Pattern)
	assert.False(t, rules["email"].Required)
	assert.Equal(t, 150.0, *rules["age"].Max)
}

func TestFactoryFor(t *testing.T) {
	f, ok := dtox.FactoryFor(reflect.TypeFor[*UserDTO]())
	require.True(t, ok)

	dto, err := f.CreateFromMapping(dtox.Mapping{"name": "Ann"}, false, dtox.KeyStyleDefault)
	require.NoError(t, err)
	assert.IsType(t, &UserDTO{}, dto)

	_, ok = dtox.FactoryFor(reflect.TypeFor[UserDTO]())
	assert.True(t, ok)
	_, ok = dtox.FactoryFor(reflect.TypeFor[string]())
	assert.False(t, ok)
}
