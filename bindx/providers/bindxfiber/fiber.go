package bindxfiber

import (
	"bytes"
	"net/url"

	"github.com/Conversia-AI/craftable-dto/bindx"
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/gofiber/fiber/v2"
)

// Request snapshots c as a bindx.Request. Route parameters are included in
// AllParameters and win over query and form values.
func Request(c *fiber.Ctx) (*bindx.HTTPRequest, error) {
	query := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		query.Add(string(key), string(value))
	})

	// fasthttp reuses the body buffer once the handler returns
	body := bytes.Clone(c.Body())
	req, err := bindx.NewRawRequest(c.Method(), c.Get(fiber.HeaderContentType), query, body)
	if err != nil {
		return nil, err
	}
	if params := c.AllParams(); len(params) > 0 {
		req = req.WithPathParams(params)
	}
	return req, nil
}

// Bind resolves a *T from c using source
//
//	app.Post("/users", func(c *fiber.Ctx) error {
//		user, err := bindxfiber.Bind[CreateUserDTO](c, resolver, bindx.SourceBody)
//		if err != nil {
//			return err
//		}
//		return bindxfiber.JSON(c, fiber.StatusCreated, user)
//	})
func Bind[T any, PT interface {
	*T
	dtox.DTO
}](c *fiber.Ctx, resolver *bindx.Resolver, source bindx.Source) (PT, error) {
	req, err := Request(c)
	if err != nil {
		return nil, err
	}

	dtos, err := resolver.Resolve(req, bindx.Argument{
		Name:    c.Route().Path,
		Factory: dtox.FactoryOf[T, PT](),
		Hint:    &bindx.MapRequest{Source: source},
	})
	if err != nil {
		return nil, err
	}
	return dtos[0].(PT), nil
}

// Handler binds a *T with source before calling fn. Binding errors are
// returned to Fiber's error handler.
func Handler[T any, PT interface {
	*T
	dtox.DTO
}](resolver *bindx.Resolver, source bindx.Source, fn func(c *fiber.Ctx, dto PT) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dto, err := Bind[T, PT](c, resolver, source)
		if err != nil {
			return err
		}
		return fn(c, dto)
	}
}

// JSON writes dto's mapping with status
func JSON(c *fiber.Ctx, status int, dto dtox.DTO) error {
	return c.Status(status).JSON(dto.ToMapping())
}

// Page writes page as {"data": [...], "meta": {...}}
func Page(c *fiber.Ctx, status int, page *dtox.Page) error {
	return c.Status(status).JSON(page.ToMapping())
}
