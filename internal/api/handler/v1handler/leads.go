package v1handler

import (
	"encoding/json"
	"net/http"

	"leadintake/internal/intake"
	"leadintake/pkg/serrors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

// CreateLead runs the public lead form. Valid input yields the submission
// Result ({"success": ...} or {"error": ...}); invalid input yields a
// validation error listing the offending fields.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var fields intake.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)

		return
	}

	form := intake.New(h.deps.Submitter)
	form.Set(fields)

	res, err := form.Submit(ctx)
	if err != nil {
		writeError(w, r, err)

		return
	}

	status := http.StatusCreated
	if !res.OK() {
		status, _ = statusOf(res.Kind())
	}
	writeJSON(ctx, w, status, res)
}
