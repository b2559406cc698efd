/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/guessr/feedback"
	"github.com/Seednode/guessr/index"
	"github.com/Seednode/guessr/profile"
	"github.com/julienschmidt/httprouter"
)

// SearchResult is one entry of a name search.
type SearchResult struct {
	ID             int    `json:"id,omitempty"`
	Name           string `json:"name"`
	PrimaryName    string `json:"primaryName,omitempty"`
	TranslatedName string `json:"translatedName,omitempty"`
	Image          string `json:"image,omitempty"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	HasMore bool           `json:"hasMore"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newSearchResponse(profiles []*profile.Profile, hasMore bool) SearchResponse {
	out := SearchResponse{
		Results: make([]SearchResult, 0, len(profiles)),
		HasMore: hasMore,
	}
	for _, p := range profiles {
		out.Results = append(out.Results, SearchResult{
			ID:             p.ID,
			Name:           p.DisplayName(),
			PrimaryName:    p.PrimaryName,
			TranslatedName: p.TranslatedName,
			Image:          p.Image,
		})
	}

	return out
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}

	return n
}

func serveSearch(cfg *Config, e *engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		q := r.URL.Query().Get("q")

		found, hasMore := e.index.Search(q,
			queryInt(r, "limit", index.DefaultSearchLimit),
			queryInt(r, "offset", 0),
		)

		written, err := writeJSON(cfg, w, http.StatusOK, newSearchResponse(found, hasMore))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Search for %q (%d results, %s) to %s in %s",
			q,
			len(found),
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveCompare(cfg *Config, e *engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		guessName := strings.TrimSpace(r.URL.Query().Get("guess"))
		answerName := strings.TrimSpace(r.URL.Query().Get("answer"))

		if guessName == "" || answerName == "" {
			if _, err := writeJSON(cfg, w, http.StatusBadRequest, errorResponse{"both guess and answer are required"}); err != nil {
				errs <- err
			}

			return
		}

		for _, name := range []string{guessName, answerName} {
			if _, ok := e.index.ResolveByName(name); !ok {
				if _, err := writeJSON(cfg, w, http.StatusNotFound, errorResponse{"unknown character: " + name}); err != nil {
					errs <- err
				}

				return
			}
		}

		gen := e.generator(feedback.NewRand(cfg.seed))

		written, err := writeJSON(cfg, w, http.StatusOK, gen.CompareNames([]string{guessName}, []string{answerName}))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Comparison of %q against %q (%s) to %s in %s",
			guessName,
			answerName,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerAPI(cfg *Config, e *engine, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/api/search", serveSearch(cfg, e, errs))
	mux.GET(cfg.prefix+"/api/compare", serveCompare(cfg, e, errs))
}
