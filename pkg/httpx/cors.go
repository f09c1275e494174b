package httpx

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// CORS allows browser calls from origins, a comma separated list or "*".
func CORS(origins string) Middleware {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: !slices.Contains(allowed, "*"),
		MaxAge:           600,
	})
	return c.Handler
}
