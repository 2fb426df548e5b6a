package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecPath is where the router serves the embedded OpenAPI document.
const SpecPath = "/openapi.yml"

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecPath),
		httpSwagger.DocExpansion("list"),
	)
}
