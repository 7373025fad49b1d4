// Package errx provides structured errors with per-package registries.
//
// Each package declares its own registry and registers its codes once:
//
//	var ErrorRegistry = errx.NewRegistry("DTOX")
//
//	var ErrUnsupportedInput = ErrorRegistry.Register(
//		"UNSUPPORTED_INPUT", errx.TypeInternal, http.StatusInternalServerError, "Unsupported input")
//
// Errors are created from the registry and enriched with details:
//
//	return ErrorRegistry.New(ErrUnsupportedInput).WithDetail("index", i)
//
// Transport adapters live in errxfiber and errxlambda.
package errx
