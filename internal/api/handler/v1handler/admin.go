package v1handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"leadintake/internal/leads"
	"leadintake/pkg/domain"
	"leadintake/pkg/serrors"
	"leadintake/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
)

type LeadPage struct {
	Leads []domain.Lead `json:"leads"`
	Total int64         `json:"total"`
}

func newLeadPage(page storage.LeadPage) LeadPage {
	out := LeadPage{Leads: page.Leads, Total: page.Total}
	if out.Leads == nil {
		out.Leads = []domain.Lead{}
	}

	return out
}

func (h *Handler) reader(r *http.Request) (leads.ScopedReader, error) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return nil, serrors.KindOnly(serrors.ErrUnauthorized)
	}

	return h.deps.Leads.As(identity), nil
}

func parseUint(q map[string][]string, key string) (uint, error) {
	values := q[key]
	if len(values) == 0 || values[0] == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(values[0], 10, 32)
	if err != nil {
		return 0, serrors.Wrap(serrors.ErrBadRequest, err, "invalid %s", key)
	}

	return uint(v), nil
}

func parseTime(v, key string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid %s, expected RFC 3339", key)
	}

	return t, nil
}

func parseLeadID(r *http.Request) (domain.LeadID, error) {
	id, err := domain.ParseLeadID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.LeadID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid lead id")
	}

	return id, nil
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseUint(q, "limit")
	if err != nil {
		writeError(w, r, err)

		return
	}
	offset, err := parseUint(q, "offset")
	if err != nil {
		writeError(w, r, err)

		return
	}

	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	page, err := reader.List(r.Context(), leads.ListOptions{
		Source:    q.Get("source"),
		OrderBy:   q.Get("order_by"),
		Direction: q.Get("direction"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, newLeadPage(page))
}

func (h *Handler) GetLeadByEmail(w http.ResponseWriter, r *http.Request) {
	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	lead, err := reader.GetByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, lead)
}

func (h *Handler) ListLeadsByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseTime(q.Get("start"), "start")
	if err != nil {
		writeError(w, r, err)

		return
	}
	end, err := parseTime(q.Get("end"), "end")
	if err != nil {
		writeError(w, r, err)

		return
	}

	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	page, err := reader.ListByDateRange(r.Context(), start, end, q.Get("source"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, newLeadPage(page))
}

func (h *Handler) LeadStats(w http.ResponseWriter, r *http.Request) {
	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	stats, err := reader.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	lead, err := reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, lead)
}

// DecodeLeadUpdates reads a partial lead object. Absent keys are left
// unchanged; "interested_training": null clears the program.
func DecodeLeadUpdates(body []byte) (storage.LeadUpdates, error) {
	var patch storage.LeadUpdates

	str := func(d *jx.Decoder) (*string, error) {
		v, err := d.Str()
		if err != nil {
			return nil, err //nolint: wrapcheck
		}

		return &v, nil
	}

	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			patch.Name, err = str(d)
		case "email":
			patch.Email, err = str(d)
		case "phone_number":
			patch.PhoneNumber, err = str(d)
		case "source":
			patch.Source, err = str(d)
		case "interested_training":
			training := domain.Training("")
			if d.Next() == jx.Null {
				err = d.Null()
			} else {
				var v string
				v, err = d.Str()
				training = domain.Training(v)
			}
			patch.InterestedTraining = &training
		default:
			err = d.Skip()
		}

		return err
	})
	if err != nil {
		return storage.LeadUpdates{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return patch, nil
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body"))

		return
	}
	patch, err := DecodeLeadUpdates(body)
	if err != nil {
		writeError(w, r, err)

		return
	}

	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	lead, err := reader.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, lead)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	reader, err := h.reader(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	if err := reader.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
