package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/skybiz/skybiz/colors"
)

const REQUEST_ID_HEADER = "X-Request-ID"

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request and records it under the matched route template.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         http.StatusOK,
		}

		requestID := r.Header.Get(REQUEST_ID_HEADER)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(REQUEST_ID_HEADER, requestID)

		defer func() {
			elapsed := time.Since(start)
			s.opts.Metrics.ObserveRequest(r.Method, routeTemplate(r), responseWriter.Status, elapsed)

			logg.Infow(fmt.Sprint(
				r.Method, " ",
				r.RequestURI, " ",
				colors.Status(responseWriter.Status), " ",
				colors.Yellow(fmt.Sprintf("[%v]", elapsed))),
				"requestId", requestID)
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

// sessionMiddleware attaches the signed in user, if any, to the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.userFromSessionCookie(r)
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), RequestContextKey("sessionUser"), user))
		}

		next.ServeHTTP(w, r)
	})
}

// csrfExemptMiddleware marks requests to paths as exempt from CSRF checks. It must run
// before csrf.Protect.
func csrfExemptMiddleware(paths ...string) mux.MiddlewareFunc {
	exempt := map[string]bool{}
	for _, path := range paths {
		exempt[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] {
				r = csrf.UnsafeSkipCheck(r)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
