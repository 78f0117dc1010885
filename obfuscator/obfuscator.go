package obfuscator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/censor"
	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/dispatcher"
	"github.com/danthegoodman1/obfuscator/envelope"
	"github.com/danthegoodman1/obfuscator/utils"
)

const (
	MsgMalformedRequest = "json input is incorrect"

	// DefaultObjectName is the file name used when the destination is a prefix.
	DefaultObjectName = "obfuscated_data"
)

type (
	Config struct {
		Store         datastore.DataStore
		MissingFields censor.MissingFieldPolicy
	}

	Request struct {
		FileToObfuscate string   `json:"file_to_obfuscate" validate:"required"`
		PIIFields       []string `json:"pii_fields" validate:"required"`
		// Destination is a full object URI, or a prefix ending in "/"
		Destination string `json:"destination" validate:"required"`
	}

	Obfuscator struct {
		dispatcher *dispatcher.Dispatcher
		censor     *censor.Censor
		validate   *validator.Validate
	}
)

func New(cfg Config) *Obfuscator {
	return &Obfuscator{
		dispatcher: dispatcher.New(cfg.Store),
		censor:     censor.New(cfg.MissingFields),
		validate:   validator.New(),
	}
}

// Run loads the source file, censors the requested fields and stores the result at the
// destination in the source's format. The first failing stage ends the run.
func (o *Obfuscator) Run(ctx context.Context, req *Request) (res envelope.Result[string]) {
	logger := zerolog.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered panic in obfuscator run")
			res = envelope.Failure[string](utils.KindUnexpected, envelope.MsgUnexpected)
			res.Detail = fmt.Sprint(r)
		}
	}()

	if req == nil || o.validate.Struct(req) != nil {
		return envelope.Failure[string](utils.KindMalformedRequest, MsgMalformedRequest)
	}

	logger.Debug().Str("source", req.FileToObfuscate).Strs("fields", req.PIIFields).Str("destination", req.Destination).Msg("running obfuscator")

	loaded := o.dispatcher.Load(ctx, req.FileToObfuscate)
	if !loaded.OK() {
		return envelope.Forward[string](loaded)
	}

	censored := o.censor.Apply(ctx, loaded.Payload.Table, req.PIIFields)
	if !censored.OK() {
		return envelope.Forward[string](censored)
	}

	dest := req.Destination
	if strings.HasSuffix(dest, "/") {
		dest += utils.GenKSortedID(DefaultObjectName+"-") + loaded.Payload.Format.Extension()
	}

	res = o.dispatcher.Store(ctx, loaded, dest)
	if res.OK() {
		logger.Info().Str("source", req.FileToObfuscate).Str("destination", dest).Msg("obfuscated file")
	}
	return res
}

// RunEvent decodes a raw trigger payload into a Request and runs it.
func (o *Obfuscator) RunEvent(ctx context.Context, payload []byte) envelope.Result[string] {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("error in json.Unmarshal of event")
		return envelope.Failure[string](utils.KindMalformedRequest, MsgMalformedRequest)
	}
	return o.Run(ctx, &req)
}
