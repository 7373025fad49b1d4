// Package dtox builds typed DTOs from loosely typed data.
//
// A DTO is any type implementing ToMapping and FromMapping. The struct helpers
// Hydrate and Dump cover the common case, driven by `dto` field tags:
//
//	type UserDTO struct {
//		Name  string `dto:"name,required,minLength=2"`
//		Email string `dto:"email,required" pattern:"^[^@]+@[^@]+$"`
//		Age   int    `dto:"age,min=0,max=150"`
//	}
//
//	func (u *UserDTO) ToMapping() dtox.Mapping { return dtox.Dump(u, dtox.KeyStyleDefault) }
//
//	func (u *UserDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
//		return dtox.Hydrate(u, data, ignoreMissing, style)
//	}
//
// Mapper turns heterogeneous items into DTOs. Each item is normalized first:
// DTOs pass through untouched, plain maps are used directly, and objects
// exposing AsMapping, ToMapping or MarshalJSON are asked for their mapping.
// Anything else goes to the optional custom normalizer.
//
//	mapper := dtox.NewMapper(dtox.FactoryOf[UserDTO]())
//
//	user, err := mapper.FromMapping(dtox.Mapping{"name": "Mark", "email": "mark@example.com"})
//
//	users, err := mapper.FromIterable(dtox.Items(rows))
//
//	page, err := mapper.FromPaginated(dtox.Items(rows), total, perPage, pageNo)
//	body, _ := json.Marshal(page) // {"data": [...], "meta": {"total": ..., "perPage": ..., "page": ...}}
//
// Mapping stops at the first failing item and returns its error.
// Construction failures (ErrMissingField, ErrTypeConversion) map to 400;
// normalization failures (ErrUnsupportedInput, ErrInvalidNormalization) are
// programming errors and map to 500.
package dtox
