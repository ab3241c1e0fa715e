package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/server/authctx"
	"tailorbooks-backend/internal/service"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload: extra data after json")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*authctx.CurrentUser, bool) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func actorOf(u *authctx.CurrentUser) service.Actor {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return service.Actor{OwnerID: u.OwnerID, Name: name}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// parseListParams reads q, sort, order, limit, offset, from, to, status and type.
func parseListParams(r *http.Request) (repository.ListParams, error) {
	q := r.URL.Query()
	p := repository.ListParams{
		Query:  q.Get("q"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}
	var err error
	if raw := q.Get("limit"); raw != "" {
		if p.Limit, err = strconv.Atoi(raw); err != nil {
			return p, errors.New("invalid limit")
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if p.Offset, err = strconv.Atoi(raw); err != nil {
			return p, errors.New("invalid offset")
		}
	}
	if p.From, err = parseDateQuery(r, "from"); err != nil {
		return p, errors.New("invalid from")
	}
	if p.To, err = parseDateQuery(r, "to"); err != nil {
		return p, errors.New("invalid to")
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return p, errors.New("from must be before to")
	}
	return p, nil
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict), errors.Is(err, domain.ErrJobSale):
		writeError(w, http.StatusConflict, err.Error())
	case repository.IsDuplicate(err):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func dateOr(value string, fallback time.Time) time.Time {
	if t, err := parseDateField(value); err == nil && t != nil {
		return *t
	}
	return fallback
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func pageResponse(items any, total int64, p repository.ListParams) map[string]any {
	return map[string]any{
		"items":  items,
		"total":  total,
		"limit":  p.PageLimit(),
		"offset": p.PageOffset(),
	}
}
