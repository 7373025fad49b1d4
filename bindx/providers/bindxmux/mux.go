package bindxmux

import (
	"net/http"

	"github.com/Conversia-AI/craftable-dto/bindx"
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/gorilla/mux"
)

// NewRequest snapshots r with the resolver's body limit. Route variables are
// included in AllParameters and win over query and form values.
func NewRequest(resolver *bindx.Resolver, r *http.Request) (*bindx.HTTPRequest, error) {
	req, err := resolver.Request(r)
	if err != nil {
		return nil, err
	}
	if vars := mux.Vars(r); len(vars) > 0 {
		req = req.WithPathParams(vars)
	}
	return req, nil
}

// HandlerFunc receives the resolved DTO, or nil for a nullable argument without declaration
type HandlerFunc func(w http.ResponseWriter, r *http.Request, dto dtox.DTO)

// Handler resolves arg for every request before calling fn. Failures are
// written as errx JSON responses.
//
//	router.Handle("/users/{id}", bindxmux.Handler(resolver, bindx.Argument{
//		Factory: dtox.FactoryOf[UpdateUserDTO](),
//		Hint:    &bindx.MapRequest{Source: bindx.SourceRequest},
//	}, updateUser)).Methods(http.MethodPut)
func Handler(resolver *bindx.Resolver, arg bindx.Argument, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := NewRequest(resolver, r)
		if err != nil {
			writeError(w, err)
			return
		}

		dtos, err := resolver.Resolve(req, arg)
		if err != nil {
			writeError(w, err)
			return
		}

		var dto dtox.DTO
		if len(dtos) > 0 {
			dto = dtos[0]
		}
		fn(w, r, dto)
	})
}

func writeError(w http.ResponseWriter, err error) {
	errx.Wrap(err, "failed to resolve request", errx.TypeInternal).ToHTTP(w)
}
