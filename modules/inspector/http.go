package inspector

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/zachfi/adtsinfo/pkg/adts"
)

// Handler returns the HTTP handler for POST /inspect. The request body is a
// raw ADTS stream; the response is its report in the format given by the
// format query parameter, or the configured format.
func (i *Inspector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		format := r.URL.Query().Get("format")
		if format == "" {
			format = i.cfg.Format
		}
		if format != FormatText && format != FormatYAML {
			http.Error(w, "unknown format "+format, http.StatusBadRequest)
			return
		}

		data, err := adts.ReadAll(http.MaxBytesReader(w, r.Body, i.cfg.MaxBodySize))
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxErr):
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			case errors.Is(err, adts.ErrEmptyInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				i.logger.Error("error reading request body", "err", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		_, span := i.tracer.Start(r.Context(), "Inspector.Handler")
		res := i.inspectData("request", data)
		span.End()

		var buf bytes.Buffer
		if err := Render(&buf, res, format); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if format == FormatYAML {
			w.Header().Set("Content-Type", "application/yaml")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		if res.Err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		_, _ = w.Write(buf.Bytes())
	})
}
