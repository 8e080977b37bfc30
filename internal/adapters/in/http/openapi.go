package http

import (
	"context"
	_ "embed"
	"fmt"

	"buyback/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openapiDocument []byte

// swaggerDoc serves the embedded document to the swagger UI.
type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return string(openapiDocument)
}

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}

// RequestValidator checks requests against the embedded OpenAPI document
// before they reach a handler.
type RequestValidator struct {
	router routers.Router
}

func NewRequestValidator() (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{router: router}, nil
}

// Middleware rejects requests that do not match their operation with a
// validation error. Paths the document does not describe pass through.
func (v *RequestValidator) Middleware() echo.MiddlewareFunc {
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         false,
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, params, err := v.router.FindRoute(req)
			if err != nil {
				return next(c)
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: params,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return errs.NewValueIsInvalidErrorWithCause("request", err)
			}
			return next(c)
		}
	}
}
