// Package validatex validates DTOs against the rules they declare, using
// go-playground/validator underneath, and reports failures through errx.
//
// A DTO declares rules either through tag options
//
//	type SignupDTO struct {
//		Name  string `dto:"name,required,minLength=2,maxLength=50"`
//		Email string `dto:"email" pattern:"/^[^@]+@[^@]+\\.[^@]+$/"`
//		Age   int    `dto:"age,min=0,max=150"`
//	}
//
// or by implementing dtox.RuleProvider. Each rule becomes validator checks:
//
//   - required: notblank (nil, "", false and empty collections fail; 0 passes)
//   - minLength / maxLength: min / max on the rune count
//   - min / max: gte / lte on the numeric value, non-numeric values fail with "numeric"
//   - pattern: RE2 syntax, optionally wrapped in /.../flags
//
// Fields without rules, and keys the DTO does not declare, are never rejected.
// Optional fields that are absent, nil or "" are skipped.
//
//	if err := validatex.ValidateDTO(dto); err != nil {
//		validatex.ValidationErrorsToHTTP(w, err)
//		return
//	}
//
// Plain structs can still be validated with `validate` tags through Validate.
package validatex
