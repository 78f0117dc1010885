package formats

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/envelope"
	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

// Adapter moves tables of a single format in and out of a DataStore. Every method
// reports through an envelope and never returns a raw error.
type Adapter struct {
	format Format
	codec  Codec
	store  datastore.DataStore
}

func NewAdapter(format Format, store datastore.DataStore) (*Adapter, error) {
	codec, err := CodecFor(format)
	if err != nil {
		return nil, err
	}
	return NewAdapterWithCodec(format, codec, store), nil
}

func NewAdapterWithCodec(format Format, codec Codec, store datastore.DataStore) *Adapter {
	return &Adapter{
		format: format,
		codec:  codec,
		store:  store,
	}
}

func (a *Adapter) Format() Format {
	return a.format
}

func (a *Adapter) Read(ctx context.Context, uri string) envelope.Result[*table.Table] {
	logger := zerolog.Ctx(ctx).With().Str("format", a.format.String()).Str("uri", uri).Logger()

	loc, err := datastore.ParseLocation(uri)
	if err != nil {
		return envelope.FromError[*table.Table](err)
	}
	b, err := a.store.Get(ctx, loc)
	if err != nil {
		logger.Warn().Err(err).Msg("error reading from data store")
		return envelope.FromError[*table.Table](err)
	}
	t, err := a.codec.Decode(b)
	if err != nil {
		logger.Warn().Err(err).Msg("error decoding")
		return envelope.FromError[*table.Table](&utils.CodecError{Format: a.format.String(), Op: "decode", Err: err})
	}

	logger.Debug().Int("rows", t.NumRows()).Int("columns", t.NumColumns()).Msg("read table")
	return envelope.Success(t, fmt.Sprintf("%s read from %s", a.format, uri))
}

// Write encodes data, which must be a *table.Table, and stores it at dest.
func (a *Adapter) Write(ctx context.Context, data any, dest string) envelope.Result[string] {
	logger := zerolog.Ctx(ctx).With().Str("format", a.format.String()).Str("uri", dest).Logger()

	b, res := a.encode(data)
	if !res.OK() {
		return envelope.Forward[string](res)
	}

	loc, err := datastore.ParseLocation(dest)
	if err != nil {
		return a.writeFailure(err)
	}
	if err = a.store.Put(ctx, loc, b, a.codec.ContentType()); err != nil {
		logger.Warn().Err(err).Msg("error writing to data store")
		return a.writeFailure(err)
	}

	logger.Debug().Int("bytes", len(b)).Msg("wrote table")
	return envelope.Success(dest, fmt.Sprintf("%s written to %s", a.format, dest))
}

// WriteBuffer encodes data without touching the data store, for staging output
// before a destination is known.
func (a *Adapter) WriteBuffer(data any) envelope.Result[[]byte] {
	b, res := a.encode(data)
	if !res.OK() {
		return res
	}
	return envelope.Success(b, fmt.Sprintf("%s written to byte stream", a.format))
}

func (a *Adapter) encode(data any) ([]byte, envelope.Result[[]byte]) {
	t, ok := data.(*table.Table)
	if !ok || t == nil {
		return nil, envelope.FromError[[]byte](&utils.ValidationError{
			Message: fmt.Sprintf("Data is in wrong format %T is not a table", data),
		})
	}
	b, err := a.codec.Encode(t)
	if err != nil {
		return nil, envelope.FromError[[]byte](&utils.CodecError{Format: a.format.String(), Op: "encode", Err: err})
	}
	return b, envelope.Success(b, "")
}

func (a *Adapter) writeFailure(err error) envelope.Result[string] {
	res := envelope.FromError[string](err)
	res.Message = fmt.Sprintf("writing did not succeed: %s. Destination should look like s3://bucket/key%s", err.Error(), a.format.Extension())
	return res
}
