package api

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// maxBodySize bounds request bodies after gzip decoding.
const maxBodySize = 64 << 10

// ServerOptions configures NewServer.
type ServerOptions struct {
	AllowOrigins []string
	Debug        bool
}

// NewServer builds the Echo instance with the shared middleware stack. Routes
// are added with Register.
func NewServer(opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = opts.Debug
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderContentEncoding, HeaderIdempotencyKey},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", maxBodySize>>10)))
	e.Use(decompressRequests(maxBodySize))

	if opts.Debug {
		pprof.Register(e)
	}
	return e
}

// sonicSerializer encodes echo responses and binds requests with sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}
	return nil
}
