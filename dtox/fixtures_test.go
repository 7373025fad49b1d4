package dtox_test

import (
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/goccy/go-json"
)

type UserDTO struct {
	Name  string `dto:"name,required,minLength=2,maxLength=50"`
	Email string `dto:"email" pattern:"^[^@]+@[^@]+$"`
	Age   int    `dto:"age,min=0,max=150"`
}

func (u *UserDTO) ToMapping() dtox.Mapping { return dtox.Dump(u, dtox.KeyStyleDefault) }

func (u *UserDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
	return dtox.Hydrate(u, data, ignoreMissing, style)
}

type AddressDTO struct {
	Street     string `dto:"street,required"`
	PostalCode string `dto:"postalCode"`
}

func (a *AddressDTO) ToMapping() dtox.Mapping { return dtox.Dump(a, dtox.KeyStyleDefault) }

func (a *AddressDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
	return dtox.Hydrate(a, data, ignoreMissing, style)
}

type CustomerDTO struct {
	FirstName string       `dto:"firstName,required"`
	Address   AddressDTO   `dto:"homeAddress"`
	Previous  []AddressDTO `dto:"previousAddresses,omitempty"`
	Tags      []string     `dto:"tags,omitempty"`
}

func (c *CustomerDTO) ToMapping() dtox.Mapping { return dtox.Dump(c, dtox.KeyStyleDefault) }

func (c *CustomerDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
	return dtox.Hydrate(c, data, ignoreMissing, style)
}

// mappable exposes itself through AsMapping
type mappable struct {
	out any
}

func (m mappable) AsMapping() any { return m.out }

// jsonItem describes itself through MarshalJSON
type jsonItem struct {
	Name string `json:"name"`
}

func (j jsonItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": j.Name})
}

type jsonArray struct{}

func (jsonArray) MarshalJSON() ([]byte, error) { return []byte(`[1,2]`), nil }

// opaque has no normalization capability
type opaque struct {
	Name string
}
