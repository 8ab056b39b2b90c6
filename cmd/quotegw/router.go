package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	quotegateway "github.com/verso-labs/quote-gateway"
	"github.com/verso-labs/quote-gateway/internal/logging"
	"github.com/verso-labs/quote-gateway/providers"
)

// newRouter builds the HTTP router over the gateway.
func newRouter(gw *quotegateway.Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/v1/quotes/random", func(w http.ResponseWriter, r *http.Request) {
		q, err := gw.Random(r.Context(), r.URL.Query().Get("tag"))
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, q)
	})

	r.Get("/v1/quotes", func(w http.ResponseWriter, r *http.Request) {
		query := searchQueryFromURL(r)
		quotes, err := gw.Search(r.Context(), query)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{
			"count":   len(quotes),
			"results": quotes,
		})
	})

	r.Get("/v1/quotes/{provider}/{id}/image", func(w http.ResponseWriter, r *http.Request) {
		img, err := gw.Image(r.Context(), chi.URLParam(r, "provider"), providers.ID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(img)
	})

	r.Get("/v1/tags", func(w http.ResponseWriter, r *http.Request) {
		tags, err := gw.Tags(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{
			"count": len(tags),
			"tags":  tags,
		})
	})

	r.Get("/v1/providers", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]interface{}{
			"providers": gw.List(),
		})
	})

	r.Route("/v1/cache", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]interface{}{
				"size":           gw.Cache().Len(),
				"blocked":        gw.Cache().Blocked(),
				"preserve_state": gw.Cache().PreserveState(),
			})
		})
		r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
			count := 10
			if c := r.URL.Query().Get("count"); c != "" {
				parsed, err := strconv.Atoi(c)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid count: "+c)
					return
				}
				count = parsed
			}
			stored, err := gw.Refresh(r.Context(), r.URL.Query().Get("tag"), count)
			if err != nil {
				writeError(w, http.StatusBadGateway, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"stored": stored})
		})
		r.Post("/block", func(w http.ResponseWriter, r *http.Request) {
			preserve := r.URL.Query().Get("preserve") == "true"
			gw.FreezeCache(preserve)
			writeJSON(w, map[string]interface{}{"blocked": true, "size": gw.Cache().Len()})
		})
		r.Post("/unblock", func(w http.ResponseWriter, _ *http.Request) {
			gw.ThawCache()
			writeJSON(w, map[string]interface{}{"blocked": false})
		})
		r.Delete("/", func(w http.ResponseWriter, _ *http.Request) {
			if err := gw.Cache().Clear(); err != nil {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeJSON(w, map[string]interface{}{"size": gw.Cache().Len()})
		})
	})

	return r
}

func searchQueryFromURL(r *http.Request) providers.SearchQuery {
	values := r.URL.Query()
	q := providers.SearchQuery{
		Query:  values.Get("query"),
		Author: values.Get("author"),
	}
	if tags := values.Get("tags"); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	if limit := values.Get("limit"); limit != "" {
		q.Limit, _ = strconv.Atoi(limit)
	}
	if page := values.Get("page"); page != "" {
		q.Page, _ = strconv.Atoi(page)
	}
	return q
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
		},
	})
}
