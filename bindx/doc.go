// Package bindx resolves DTOs from HTTP requests and writes DTOs back as JSON.
//
// A Resolver reads one of four sources from a Request:
//
//   - body: the JSON body (empty means {}), or the form fields of a non-JSON request
//   - query: the query string
//   - request: query and form parameters together
//   - auto: the query for GET and HEAD, otherwise the body, falling back to
//     the query when the body yields an empty mapping
//
// The extracted mapping goes through a dtox.Mapper built from the argument's
// factory:
//
//	resolver := bindx.NewResolver(bindx.Options{})
//
//	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
//		req, err := resolver.Request(r)
//		if err != nil {
//			errx.Wrap(err, "read failed", errx.TypeBadRequest).ToHTTP(w)
//			return
//		}
//
//		var args struct {
//			User CreateUserDTO `bind:"body"`
//		}
//		if err := resolver.Bind(req, &args); err != nil {
//			errx.Wrap(err, "bind failed", errx.TypeBadRequest).ToHTTP(w)
//			return
//		}
//		bindx.WriteDTO(w, http.StatusCreated, &args.User)
//	})
//
// Adapters for Fiber, gorilla/mux and API Gateway events live under providers/.
package bindx
