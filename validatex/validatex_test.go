package validatex_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/validatex"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupDTO struct {
	Name  string `dto:"name,required,minLength=2,maxLength=50"`
	Email string `dto:"email" pattern:"^[^@]+@[^@]+$"`
	Age   int    `dto:"age,min=0,max=150"`
}

func (s *signupDTO) ToMapping() dtox.Mapping { return dtox.Dump(s, dtox.KeyStyleDefault) }

func (s *signupDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
	return dtox.Hydrate(s, data, ignoreMissing, style)
}

func ptr[T any](v T) *T { return &v }

// rules mirror the signup form with a delimited pattern
func signupRules() map[string]dtox.Rule {
	return map[string]dtox.Rule{
		"name":  {Required: true, MinLength: ptr(2), MaxLength: ptr(50)},
		"email": {Pattern: `/^[^@]+@[^@]+\.[^@]+$/`},
		"age":   {Min: ptr(0.0), Max: ptr(150.0)},
		"notes": {},
	}
}

func TestConstraints(t *testing.T) {
	c := validatex.Constraints(signupRules())

	require.Contains(t, c, "name")
	assert.True(t, c["name"].Required)
	assert.Equal(t, []validatex.Check{
		{Rule: validatex.RuleRequired, Tag: "notblank"},
		{Rule: validatex.RuleMinLength, Tag: "min", Param: "2"},
		{Rule: validatex.RuleMaxLength, Tag: "max", Param: "50"},
	}, c["name"].Checks)

	assert.False(t, c["email"].Required)
	assert.Equal(t, []validatex.Check{
		{Rule: validatex.RulePattern, Tag: "pattern", Param: `/^[^@]+@[^@]+\.[^@]+$/`},
	}, c["email"].Checks)

	assert.Equal(t, []validatex.Check{
		{Rule: validatex.RuleMin, Tag: "gte", Param: "0"},
		{Rule: validatex.RuleMax, Tag: "lte", Param: "150"},
	}, c["age"].Checks)

	assert.NotContains(t, c, "notes")
}

func TestCheckExprEscapesSeparators(t *testing.T) {
	c := validatex.Check{Tag: "pattern", Param: "^(a|b){1,2}$"}
	assert.Equal(t, "pattern=^(a0x7Cb){10x2C2}$", c.Expr())
	assert.Equal(t, "notblank", validatex.Check{Tag: "notblank"}.Expr())
}

func TestValidateMapping(t *testing.T) {
	tests := map[string]struct {
		data   dtox.Mapping
		failed map[string]string
	}{
		"valid": {
			data: dtox.Mapping{"name": "John", "email": "john@example.com", "age": 30},
		},
		"missing required": {
			data:   dtox.Mapping{"email": "test@example.com"},
			failed: map[string]string{"name": validatex.RuleRequired},
		},
		"blank required": {
			data:   dtox.Mapping{"name": ""},
			failed: map[string]string{"name": validatex.RuleRequired},
		},
		"too short": {
			data:   dtox.Mapping{"name": "A"},
			failed: map[string]string{"name": validatex.RuleMinLength},
		},
		"too long": {
			data:   dtox.Mapping{"name": strings.Repeat("é", 51)},
			failed: map[string]string{"name": validatex.RuleMaxLength},
		},
		"out of range": {
			data:   dtox.Mapping{"name": "John", "age": 200},
			failed: map[string]string{"age": validatex.RuleMax},
		},
		"below range": {
			data:   dtox.Mapping{"name": "John", "age": -1},
			failed: map[string]string{"age": validatex.RuleMin},
		},
		"numeric string in range": {
			data: dtox.Mapping{"name": "John", "age": "42"},
		},
		"non numeric": {
			data:   dtox.Mapping{"name": "John", "age": "old"},
			failed: map[string]string{"age": validatex.RuleNumeric},
		},
		"pattern mismatch": {
			data:   dtox.Mapping{"name": "John", "email": "john@localhost"},
			failed: map[string]string{"email": validatex.RulePattern},
		},
		"extra fields allowed": {
			data: dtox.Mapping{"name": "John", "extra": "field"},
		},
		"optional nil skipped": {
			data: dtox.Mapping{"name": "John", "email": nil, "age": nil},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := validatex.ValidateMapping(tt.data, signupRules())
			if len(tt.failed) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs validatex.ValidationErrors
			require.True(t, errors.As(err, &verrs), "%v", err)
			assert.Len(t, verrs, len(tt.failed))
			for field, rule := range tt.failed {
				require.True(t, verrs.Has(field), "%v", verrs)
				assert.Equal(t, rule, verrs.Get(field)[0].Rule)
			}
		})
	}
}

func TestValidateMapping_BlankRequiredReportsOnlyRequired(t *testing.T) {
	rules := map[string]dtox.Rule{
		"tags":  {Required: true, MinLength: ptr(1)},
		"agree": {Required: true, Pattern: "^true$"},
	}

	err := validatex.ValidateMapping(dtox.Mapping{"tags": []any{}, "agree": false}, rules)

	var verrs validatex.ValidationErrors
	require.True(t, errors.As(err, &verrs), "%v", err)
	require.Len(t, verrs, 2)
	for _, field := range []string{"agree", "tags"} {
		require.Len(t, verrs.Get(field), 1)
		assert.Equal(t, validatex.RuleRequired, verrs.Get(field)[0].Rule)
	}
}

func TestValidateMapping_BadPattern(t *testing.T) {
	err := validatex.ValidateMapping(dtox.Mapping{"code": "x"}, map[string]dtox.Rule{
		"code": {Pattern: "([a-z"},
	})
	assert.True(t, errx.IsCode(err, validatex.ErrInvalidValidation))
}

func TestValidateDTO_TagRules(t *testing.T) {
	assert.NoError(t, validatex.ValidateDTO(&signupDTO{Name: "John", Email: "j@x", Age: 0}))

	err := validatex.ValidateDTO(&signupDTO{Name: "J", Email: "nope", Age: 151})
	var verrs validatex.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Equal(t, []string{"age", "email", "name"}, []string{verrs[0].Field, verrs[1].Field, verrs[2].Field})
	assert.Equal(t, "must be at least 2 characters", verrs.Get("name")[0].Message)
	assert.Len(t, verrs.ByRule(validatex.RuleMax), 1)
}

type ruledDTO struct {
	signupDTO
	checked bool
}

func (r *ruledDTO) ValidationRules() map[string]dtox.Rule { return signupRules() }

func (r *ruledDTO) Validate() error {
	r.checked = true
	if r.Name == "root" {
		return errors.New("reserved name")
	}
	return nil
}

func TestValidateDTO_RuleProviderAndValidatable(t *testing.T) {
	dto := &ruledDTO{signupDTO: signupDTO{Name: "John", Email: "john@example.com"}}
	require.NoError(t, validatex.ValidateDTO(dto))
	assert.True(t, dto.checked)

	dto = &ruledDTO{signupDTO: signupDTO{Name: "John", Email: "john@localhost"}}
	err := validatex.ValidateDTO(dto)
	assert.Error(t, err)
	assert.False(t, dto.checked, "own validation runs only after the rules pass")

	dto = &ruledDTO{signupDTO: signupDTO{Name: "root"}}
	assert.EqualError(t, validatex.ValidateDTO(dto), "reserved name")
}

type account struct {
	Username string `json:"username" validate:"required,min=3"`
	Age      int    `json:"age" validate:"gte=18"`
	Code     string `dto:"code" validate:"omitempty,pattern=^[A-Z]+$"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, validatex.Validate(account{Username: "ann", Age: 20, Code: "AB"}))

	err := validatex.Validate(account{Username: "an", Age: 10, Code: "ab"})
	var verrs validatex.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, validatex.RuleMinLength, verrs.Get("username")[0].Rule)
	assert.Equal(t, validatex.RuleMin, verrs.Get("age")[0].Rule)
	assert.Equal(t, validatex.RulePattern, verrs.Get("code")[0].Rule)

	assert.True(t, errx.IsCode(validatex.Validate(42), validatex.ErrInvalidStruct))
}

func TestRegisterRule(t *testing.T) {
	v := validatex.New()
	require.NoError(t, v.RegisterRule("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))

	type pair struct {
		N int `json:"n" validate:"even"`
	}
	assert.NoError(t, v.Struct(pair{N: 2}))

	var verrs validatex.ValidationErrors
	require.True(t, errors.As(v.Struct(pair{N: 3}), &verrs))
	assert.Equal(t, "even", verrs[0].Rule)
	assert.Equal(t, "failed validation: even", verrs[0].Message)

	assert.True(t, errx.IsCode(v.RegisterRule("", nil), validatex.ErrInvalidValidation))
}

func TestToErrx(t *testing.T) {
	verrs := validatex.ValidationErrors{
		validatex.NewValidationError("name", validatex.RuleRequired, "", nil, ""),
		validatex.NewValidationError("age", validatex.RuleMax, "150", 200, ""),
		validatex.NewValidationError("age", validatex.RuleNumeric, "", "x", "custom"),
	}

	xerr := verrs.ToErrx()
	require.NotNil(t, xerr)
	assert.Equal(t, validatex.ErrValidationFailed, xerr.Code)
	assert.Equal(t, http.StatusBadRequest, xerr.Status())
	assert.Equal(t, 3, xerr.Details["error_count"])
	assert.Equal(t, 2, xerr.Details["field_count"])

	fields := xerr.Details["errors"].(map[string][]map[string]any)
	assert.Equal(t, "150", fields["age"][0]["param"])
	assert.Equal(t, "200", fields["age"][0]["value"])
	assert.Equal(t, "custom", fields["age"][1]["message"])

	single := validatex.ValidationErrors{verrs[0]}.ToErrx()
	assert.Equal(t, validatex.ErrRequiredField, single.Code)

	assert.Nil(t, validatex.ValidationErrors{}.ToErrx())
}

func TestValidationErrorsMessage(t *testing.T) {
	one := validatex.ValidationErrors{validatex.NewValidationError("name", validatex.RuleRequired, "", nil, "")}
	assert.Equal(t, "validation failed on field 'name': is required", one.Error())

	two := append(one, validatex.NewValidationError("age", validatex.RuleMin, "0", -1, ""))
	assert.Contains(t, two.Error(), "2 validation errors:")
	assert.Contains(t, two.Error(), "must be greater than or equal to 0")
}

func TestValidateRequest(t *testing.T) {
	w := httptest.NewRecorder()
	ok := validatex.ValidateRequest(w, &signupDTO{Name: "J"})
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(validatex.ErrTooShort), body.Error.Code)

	w = httptest.NewRecorder()
	assert.True(t, validatex.ValidateRequest(w, &signupDTO{Name: "John"}))
	assert.Equal(t, 0, w.Body.Len())
}

func TestValidationErrorsToHTTP_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	validatex.ValidationErrorsToHTTP(w, errors.New("boom"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "boom")

	w = httptest.NewRecorder()
	validatex.ValidationErrorsToHTTP(w, nil)
	assert.Equal(t, 0, w.Body.Len())
}
