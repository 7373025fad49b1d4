package bindx

import (
	"errors"
	"iter"
	"net/http"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/goccy/go-json"
)

// WriteDTO writes dto's mapping as a JSON response
func WriteDTO(w http.ResponseWriter, status int, dto dtox.DTO) error {
	return writeJSON(w, status, dto.ToMapping())
}

// WriteCollection writes items as a JSON array. Nothing is written when an
// item cannot be converted.
func WriteCollection(w http.ResponseWriter, status int, items iter.Seq[any]) error {
	data, err := CollectionMappings(items)
	if err != nil {
		return err
	}
	return writeJSON(w, status, data)
}

// WritePage writes page as {"data": [...], "meta": {...}}
func WritePage(w http.ResponseWriter, status int, page *dtox.Page) error {
	return writeJSON(w, status, page.ToMapping())
}

// CollectionMappings converts DTOs, mappings, Mappable and json.Marshaler
// items into mappings. Anything else fails with DTOX_UNSUPPORTED_INPUT.
func CollectionMappings(items iter.Seq[any]) ([]dtox.Mapping, error) {
	out := []dtox.Mapping{}
	i := 0
	for item := range items {
		m, err := dtox.Normalize(item, nil)
		if err != nil {
			var xerr *errx.Error
			if errors.As(err, &xerr) && (dtox.IsUnsupportedInput(err) || dtox.IsInvalidNormalization(err)) {
				xerr.WithDetail("index", i)
			}
			return nil, err
		}
		out = append(out, m)
		i++
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return ErrorRegistry.NewWithCause(ErrEncodeFailed, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
