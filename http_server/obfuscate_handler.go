package http_server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/envelope"
	"github.com/danthegoodman1/obfuscator/obfuscator"
	"github.com/danthegoodman1/obfuscator/utils"
)

// ObfuscateHandler runs one obfuscation and responds with its result envelope.
func (s *HTTPServer) ObfuscateHandler(c *CustomContext) error {
	ctx := c.Request().Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	var reqBody obfuscator.Request
	if err := ValidateRequest(c, &reqBody); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("invalid obfuscate request")
		res := envelope.Failure[string](utils.KindMalformedRequest, obfuscator.MsgMalformedRequest)
		return c.JSON(statusFor(res.Kind), res)
	}

	res := s.obfuscator.Run(ctx, &reqBody)
	if !res.OK() {
		zerolog.Ctx(ctx).Warn().Str("kind", string(res.Kind)).Str("code", res.Code).Msg(res.Message)
	}
	return c.JSON(statusFor(res.Kind), res)
}

func statusFor(kind utils.ErrorKind) int {
	switch kind {
	case "":
		return http.StatusOK
	case utils.KindMalformedRequest, utils.KindValidation:
		return http.StatusBadRequest
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case utils.KindTransport:
		return http.StatusBadGateway
	case utils.KindCodec:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
