// Package http provides http transport for the catalog query API
package http

import (
	stdhttp "net/http"
	"strconv"

	"comicvault/internal/modkit/httpkit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/services/api/catalog/domain"
	catdom "comicvault/internal/services/catalog/domain"
)

// Register mounts catalog endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// static segments win over {type}/{id} in chi
	httpkit.GetQuery[domain.RecentInput](r, "/comics/recent", h.recent)

	httpkit.GetQuery[domain.ListInput](r, "/{type}", h.list)
	httpkit.GetQuery[domain.SearchInput](r, "/{type}/search", h.search)
	httpkit.Get(r, "/{type}/{id}", h.details)
}

type handlers struct{ svc domain.ServicePort }

func entityType(r *stdhttp.Request) (catdom.EntityType, error) {
	t, err := catdom.ParseType(httpkit.URLParam(r, "type"))
	if err != nil {
		return "", perr.NotFoundf("no such catalog %q", httpkit.URLParam(r, "type"))
	}
	return t, nil
}

// swagger:route GET /catalog/{type} Catalog catalogList
// @Summary Naturally sorted page of a catalog
// @Tags Catalog
// @Produce json
// @Param type path string true "characters | comics | creators | series"
// @Param page query int false "1-based page" default(1)
// @Param per_page query int false "items per page" default(20)
// @Success 200 {array} domain.Item "ok"
// @Failure 416 {object} httpkit.Envelope "page out of range"
// @Router /catalog/{type} [get]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) httpkit.Response {
	t, err := entityType(r)
	if err != nil {
		return httpkit.Error(err)
	}
	res, err := h.svc.List(r.Context(), t, in.Page, in.PerPage)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.List(res.Items, res.Paging)
}

// swagger:route GET /catalog/{type}/search Catalog catalogSearch
// @Summary Fuzzy search by title or name
// @Tags Catalog
// @Produce json
// @Param type path string true "characters | comics | series"
// @Param q query string true "search text"
// @Param page query int false "1-based page" default(1)
// @Param per_page query int false "items per page" default(20)
// @Success 200 {array} domain.Item "ok"
// @Failure 503 {object} httpkit.Envelope "search index unavailable"
// @Router /catalog/{type}/search [get]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) httpkit.Response {
	t, err := entityType(r)
	if err != nil {
		return httpkit.Error(err)
	}
	res, err := h.svc.Search(r.Context(), t, in.Q, in.Page, in.PerPage)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.List(res.Items, res.Paging)
}

// swagger:route GET /catalog/comics/recent Catalog catalogRecent
// @Summary Newest released comics
// @Tags Catalog
// @Produce json
// @Param limit query int false "how many" default(30)
// @Success 200 {array} domain.Item "ok"
// @Router /catalog/comics/recent [get]
func (h *handlers) recent(r *stdhttp.Request, in domain.RecentInput) httpkit.Response {
	out, err := h.svc.TopRecentComics(r.Context(), in.Limit)
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.OK(out)
}

// swagger:route GET /catalog/{type}/{id} Catalog catalogDetails
// @Summary One entity with its relations
// @Tags Catalog
// @Produce json
// @Param type path string true "characters | comics | creators | series"
// @Param id path int true "upstream id"
// @Success 200 {object} domain.ComicDetails "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /catalog/{type}/{id} [get]
func (h *handlers) details(r *stdhttp.Request) (any, error) {
	t, err := entityType(r)
	if err != nil {
		return nil, err
	}
	raw := httpkit.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "id must be a positive integer, got %q", raw), "id")
	}

	ctx := r.Context()
	switch t {
	case catdom.Comics:
		return h.svc.ComicDetails(ctx, id)
	case catdom.Characters:
		return h.svc.CharacterDetails(ctx, id)
	case catdom.Creators:
		return h.svc.CreatorDetails(ctx, id)
	default:
		return h.svc.SerieDetails(ctx, id)
	}
}
