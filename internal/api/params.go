// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/store"
)

// listParams are the query parameters of GET /videos.
type listParams struct {
	Category *string
	Order    *string
	Limit    *int
}

func bindListParams(r *http.Request) (listParams, error) {
	var p listParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "category", q, &p.Category); err != nil {
		return p, fmt.Errorf("%w: category: %v", errBadRequest, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "order", q, &p.Order); err != nil {
		return p, fmt.Errorf("%w: order: %v", errBadRequest, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, fmt.Errorf("%w: limit: %v", errBadRequest, err)
	}
	return p, nil
}

// Query converts the parameters into a storage query. "all" and an empty
// category mean no filter.
func (p listParams) Query() (store.Query, error) {
	var q store.Query
	if p.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*p.Category))
		if c != "" && c != "all" {
			cat, ok := video.ParseCategory(c)
			if !ok {
				return q, fmt.Errorf("%w: unknown category %q", errBadRequest, *p.Category)
			}
			q.Category = cat
		}
	}
	if p.Order != nil {
		switch o := store.Order(*p.Order); o {
		case "", store.OrderNewest, store.OrderMostViewed:
			q.Order = o
		default:
			return q, fmt.Errorf("%w: unknown order %q", errBadRequest, *p.Order)
		}
	}
	if p.Limit != nil {
		if *p.Limit < 1 || *p.Limit > store.MaxLimit {
			return q, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, store.MaxLimit)
		}
		q.Limit = *p.Limit
	}
	return q, nil
}

// pathID binds the {id} path parameter.
func pathID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: id: %v", errBadRequest, err)
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: id is empty", errBadRequest)
	}
	return id, nil
}

// commentLimit reads the optional limit of GET /videos/{id}/comments.
func commentLimit(r *http.Request, def int) (int, error) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return 0, fmt.Errorf("%w: limit: %v", errBadRequest, err)
	}
	if limit == nil {
		return def, nil
	}
	if *limit < 1 || *limit > store.MaxLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, store.MaxLimit)
	}
	return *limit, nil
}
