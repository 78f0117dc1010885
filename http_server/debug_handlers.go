package http_server

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/danthegoodman1/obfuscator/formats"
)

type (
	formatInfo struct {
		Name        string
		Extension   string
		ContentType string
	}

	formatsResponse struct {
		Formats []formatInfo
		Schemes []string
	}
)

// ListFormats reports the file formats and location schemes this server can handle.
func (s *HTTPServer) ListFormats(c *CustomContext) error {
	var res formatsResponse
	for _, f := range formats.Supported {
		codec, err := formats.CodecFor(f)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		res.Formats = append(res.Formats, formatInfo{
			Name:        f.String(),
			Extension:   f.Extension(),
			ContentType: codec.ContentType(),
		})
	}
	res.Schemes = append(res.Schemes, s.schemes...)
	sort.Strings(res.Schemes)

	return c.JSON(http.StatusOK, res)
}
