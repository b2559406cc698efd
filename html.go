/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

func homePage(cfg *Config, e *engine) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(getFavicon(cfg))
	b.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/app.css">`, cfg.prefix))
	b.WriteString(`<title>guessr</title></head><body class="home"><main>`)
	b.WriteString(`<h1>guessr</h1>`)
	b.WriteString(fmt.Sprintf(`<p>Guess the hidden character in %d attempts. Every guess shows which traits, tags and works it shares with the answer.</p>`, cfg.maxAttempts))
	b.WriteString(fmt.Sprintf(`<p class="stats">%d characters loaded.</p>`, e.index.Len()))
	b.WriteString(fmt.Sprintf(`<p><a class="button" href="%s/guess">Start a new game</a></p>`, cfg.prefix))

	b.WriteString(`<h2>Compared traits</h2><ul>`)
	for _, def := range e.schema.Attributes {
		b.WriteString("<li>" + html.EscapeString(def.Label) + "</li>")
	}
	b.WriteString(`</ul>`)

	if len(e.settings.MetaTags) > 0 {
		b.WriteString(`<p>Answers are limited to characters tagged ` + html.EscapeString(strings.Join(e.settings.MetaTags, ", ")) + `.</p>`)
	}

	b.WriteString(fmt.Sprintf(`</main><footer><a href="%s/version">v%s</a></footer></body></html>`, cfg.prefix, releaseVersion))

	return b.String()
}

func serveHomePage(cfg *Config, e *engine, errs chan<- error) httprouter.Handle {
	page := homePage(cfg, e)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		securityHeaders(cfg, w)

		written, err := w.Write([]byte(page))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := "User-agent: *\nAllow: /$\nDisallow: " + cfg.prefix + "/guess\nDisallow: " + cfg.prefix + "/api/\n"

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
