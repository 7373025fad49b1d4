package validatex

import (
	"errors"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Rule names reported in ValidationError.Rule
const (
	RuleRequired  = "required"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RuleMin       = "min"
	RuleMax       = "max"
	RulePattern   = "pattern"
	RuleNumeric   = "numeric"
)

const (
	tagNotBlank = "notblank"
	tagPattern  = "pattern"
)

// Validatable is implemented by types that validate themselves
type Validatable interface {
	Validate() error
}

// Check is one validator tag applied to a field value
type Check struct {
	Rule  string
	Tag   string
	Param string
}

// Expr renders the check as a validator tag expression
func (c Check) Expr() string {
	if c.Param == "" {
		return c.Tag
	}
	// commas and pipes are tag separators
	p := strings.NewReplacer(",", "0x2C", "|", "0x7C").Replace(c.Param)
	return c.Tag + "=" + p
}

// FieldConstraint is the translated form of a dtox.Rule
type FieldConstraint struct {
	Required bool
	Checks   []Check
}

// Constraints translates DTO rules into validator checks. Fields whose rule
// carries no constraint are omitted, so they are never validated.
func Constraints(rules map[string]dtox.Rule) map[string]FieldConstraint {
	out := make(map[string]FieldConstraint, len(rules))
	for field, r := range rules {
		if r.IsZero() {
			continue
		}

		fc := FieldConstraint{Required: r.Required}
		if r.Required {
			fc.Checks = append(fc.Checks, Check{Rule: RuleRequired, Tag: tagNotBlank})
		}
		if r.MinLength != nil {
			fc.Checks = append(fc.Checks, Check{Rule: RuleMinLength, Tag: "min", Param: strconv.Itoa(*r.MinLength)})
		}
		if r.MaxLength != nil {
			fc.Checks = append(fc.Checks, Check{Rule: RuleMaxLength, Tag: "max", Param: strconv.Itoa(*r.MaxLength)})
		}
		if r.Min != nil {
			fc.Checks = append(fc.Checks, Check{Rule: RuleMin, Tag: "gte", Param: formatFloat(*r.Min)})
		}
		if r.Max != nil {
			fc.Checks = append(fc.Checks, Check{Rule: RuleMax, Tag: "lte", Param: formatFloat(*r.Max)})
		}
		if r.Pattern != "" {
			fc.Checks = append(fc.Checks, Check{Rule: RulePattern, Tag: tagPattern, Param: r.Pattern})
		}
		out[field] = fc
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Validator wraps a go-playground validator with the notblank and pattern rules registered
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator. Struct fields are reported by their dto or json name.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	// both names are free in the baked-in set, registration cannot fail
	_ = v.RegisterValidation(tagNotBlank, notBlank, true)
	_ = v.RegisterValidation(tagPattern, matchPattern)
	return &Validator{validate: v}
}

var defaultValidator = New()

// RegisterRule adds a custom validator tag usable in `validate` struct tags
func (v *Validator) RegisterRule(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return ErrorRegistry.NewWithCause(ErrInvalidValidation, err).WithDetail("rule", tag)
	}
	return nil
}

// Struct validates obj through its `validate` tags, or through Validate when obj is Validatable
func (v *Validator) Struct(obj any) error {
	if val, ok := obj.(Validatable); ok {
		return val.Validate()
	}

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return ErrorRegistry.NewWithCause(ErrInvalidStruct, err)
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return formatFieldErrors(fieldErrs)
	}
	return err
}

// Mapping validates data against rules. Keys without rules are allowed.
// Absent or nil optional values are skipped, as are empty strings.
func (v *Validator) Mapping(data dtox.Mapping, rules map[string]dtox.Rule) error {
	constraints := Constraints(rules)

	var errs ValidationErrors
	for _, field := range slices.Sorted(maps.Keys(constraints)) {
		fc := constraints[field]
		value := data[field]

		if value == nil || value == "" {
			if fc.Required {
				errs = append(errs, NewValidationError(field, RuleRequired, "", value, ""))
			}
			continue
		}

		for _, c := range fc.Checks {
			ve, err := v.check(field, value, c)
			if err != nil {
				return err
			}
			if ve == nil {
				continue
			}
			errs = append(errs, *ve)
			if ve.Rule == RuleNumeric || ve.Rule == RuleRequired {
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DTO validates the mapping of dto against its rules, then runs its own Validate if any
func (v *Validator) DTO(dto dtox.DTO) error {
	if err := v.Mapping(dto.ToMapping(), dtox.RulesOf(dto)); err != nil {
		return err
	}
	if val, ok := dto.(Validatable); ok {
		return val.Validate()
	}
	return nil
}

func (v *Validator) check(field string, value any, c Check) (*ValidationError, error) {
	subject := value
	switch c.Rule {
	case RuleMinLength, RuleMaxLength:
		subject = lengthSubject(value)
	case RuleMin, RuleMax:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			ve := NewValidationError(field, RuleNumeric, "", value, "")
			return &ve, nil
		}
		subject = f
	case RulePattern:
		if _, err := compilePattern(c.Param); err != nil {
			return nil, ErrorRegistry.NewWithCause(ErrInvalidValidation, err).
				WithDetail("field", field).
				WithDetail("pattern", c.Param)
		}
		subject = cast.ToString(value)
	}

	err := v.validate.Var(subject, c.Expr())
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, ErrorRegistry.NewWithCause(ErrInvalidValidation, err).WithDetail("field", field)
	}
	ve := NewValidationError(field, c.Rule, c.Param, value, "")
	return &ve, nil
}

func lengthSubject(value any) any {
	switch reflect.ValueOf(value).Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return value
	}
	return cast.ToString(value)
}

func formatFieldErrors(fieldErrs validator.ValidationErrors) ValidationErrors {
	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := ruleForTag(fe.Tag(), fe.Kind())
		errs = append(errs, NewValidationError(fe.Field(), rule, fe.Param(), fe.Value(), ""))
	}
	return errs
}

func ruleForTag(tag string, kind reflect.Kind) string {
	sized := kind == reflect.String || kind == reflect.Slice || kind == reflect.Map || kind == reflect.Array
	switch tag {
	case "required", tagNotBlank:
		return RuleRequired
	case "min", "gte":
		if sized {
			return RuleMinLength
		}
		return RuleMin
	case "max", "lte":
		if sized {
			return RuleMaxLength
		}
		return RuleMax
	case tagPattern:
		return RulePattern
	}
	return tag
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"dto", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// notBlank rejects nil, empty strings, false and empty collections. Zero numbers pass.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Invalid:
		return false
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() > 0
	case reflect.Bool:
		return field.Bool()
	case reflect.Pointer, reflect.Interface:
		return !field.IsNil()
	}
	return true
}

func matchPattern(fl validator.FieldLevel) bool {
	re, err := compilePattern(fl.Param())
	if err != nil {
		return false
	}
	return re.MatchString(fl.Field().String())
}

var patternCache sync.Map

var delimited = regexp.MustCompile(`^/(.*)/([imsU]*)$`)

// compilePattern accepts plain RE2 syntax or a delimited form such as /^a+$/i
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}

	expr := pattern
	if m := delimited.FindStringSubmatch(pattern); m != nil {
		expr = m[1]
		if m[2] != "" {
			expr = "(?" + m[2] + ")" + expr
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// Validate validates obj with the package validator
func Validate(obj any) error {
	return defaultValidator.Struct(obj)
}

// ValidateDTO validates dto against its declared rules with the package validator
func ValidateDTO(dto dtox.DTO) error {
	return defaultValidator.DTO(dto)
}

// ValidateMapping validates data against rules with the package validator
func ValidateMapping(data dtox.Mapping, rules map[string]dtox.Rule) error {
	return defaultValidator.Mapping(data, rules)
}

// RegisterRule adds a custom tag to the package validator
func RegisterRule(tag string, fn validator.Func) error {
	return defaultValidator.RegisterRule(tag, fn)
}

// ValidateWithErrx is Validate with failures converted to *errx.Error
func ValidateWithErrx(obj any) *errx.Error {
	return toErrx(Validate(obj))
}

// ValidateDTOWithErrx is ValidateDTO with failures converted to *errx.Error
func ValidateDTOWithErrx(dto dtox.DTO) *errx.Error {
	return toErrx(ValidateDTO(dto))
}

func toErrx(err error) *errx.Error {
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.ToErrx()
	}
	return errx.Wrap(err, "validation failed", errx.TypeValidation)
}
