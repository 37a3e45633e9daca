// Package handlers holds the thin HTTP layer over the services.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/services"
)

// pathID reads the {id} URL parameter
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, services.NewDomainError(services.ErrorTypeValidation, "id must be an integer", err)
	}
	return id, nil
}

// queryParameters reads startIndex, pageSize and pageNumber. Unparseable
// values fall back to zero and are normalized by the services.
func queryParameters(r *http.Request) models.QueryParameters {
	q := r.URL.Query()
	atoi := func(key string) int {
		v, _ := strconv.Atoi(q.Get(key))
		return v
	}
	return models.QueryParameters{
		StartIndex: atoi("startIndex"),
		PageSize:   atoi("pageSize"),
		PageNumber: atoi("pageNumber"),
	}
}

// countryQuery reads the $filter, $orderby, $top and $skip options.
func countryQuery(r *http.Request) (models.CountryQuery, error) {
	q := r.URL.Query()
	out := models.CountryQuery{
		Filter:  q.Get("$filter"),
		OrderBy: q.Get("$orderby"),
	}
	for key, dst := range map[string]**int{"$top": &out.Top, "$skip": &out.Skip} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return out, services.NewDomainError(services.ErrorTypeValidation, key+" must be an integer", err)
		}
		*dst = &n
	}
	return out, nil
}
