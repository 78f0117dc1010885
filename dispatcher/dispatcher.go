package dispatcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/envelope"
	"github.com/danthegoodman1/obfuscator/formats"
	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

type (
	// Loaded is a table together with the format it was read in.
	Loaded struct {
		Table  *table.Table
		Format formats.Format
	}

	// Dispatcher picks the adapter for a path by its suffix.
	Dispatcher struct {
		adapters map[formats.Format]*formats.Adapter
	}
)

func New(store datastore.DataStore) *Dispatcher {
	d := &Dispatcher{adapters: make(map[formats.Format]*formats.Adapter, len(formats.Supported))}
	for _, f := range formats.Supported {
		a, err := formats.NewAdapter(f, store)
		if err != nil {
			// every supported format has a codec
			panic(fmt.Sprintf("no codec for %s: %s", f, err))
		}
		d.adapters[f] = a
	}
	return d
}

func unsupported[T any]() envelope.Result[T] {
	return envelope.Failure[T](utils.KindUnsupportedFormat, formats.ErrUnsupportedFormat.Error())
}

// Load reads the table at path with the adapter matching its suffix. An unsupported
// suffix fails before any storage call.
func (d *Dispatcher) Load(ctx context.Context, path string) envelope.Result[Loaded] {
	f, err := formats.ResolveFormat(path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("unsupported format")
		return unsupported[Loaded]()
	}

	res := d.adapters[f].Read(ctx, path)
	if !res.OK() {
		return envelope.Forward[Loaded](res)
	}
	return envelope.Success(Loaded{Table: res.Payload, Format: f}, res.Message)
}

// Store writes a loaded table to dest in the format it was loaded in. The destination
// suffix must be one of the supported ones.
func (d *Dispatcher) Store(ctx context.Context, loaded envelope.Result[Loaded], dest string) envelope.Result[string] {
	a, res := d.adapterFor(loaded)
	if !res.OK() {
		return envelope.Forward[string](res)
	}
	if _, err := formats.ResolveFormat(dest); err != nil {
		return unsupported[string]()
	}
	return a.Write(ctx, loaded.Payload.Table, dest)
}

// Stage encodes a loaded table in its format without writing it anywhere.
func (d *Dispatcher) Stage(ctx context.Context, loaded envelope.Result[Loaded]) envelope.Result[[]byte] {
	a, res := d.adapterFor(loaded)
	if !res.OK() {
		return envelope.Forward[[]byte](res)
	}
	staged := a.WriteBuffer(loaded.Payload.Table)
	zerolog.Ctx(ctx).Debug().Str("format", a.Format().String()).Int("bytes", len(staged.Payload)).Msg("staged table")
	return staged
}

func (d *Dispatcher) adapterFor(loaded envelope.Result[Loaded]) (*formats.Adapter, envelope.Result[struct{}]) {
	if !loaded.OK() || loaded.Payload.Table == nil {
		res := envelope.Failure[struct{}](utils.KindUnexpected, envelope.MsgUnexpected)
		res.Detail = loaded
		return nil, res
	}
	switch loaded.Payload.Format {
	case formats.FormatCSV, formats.FormatJSON, formats.FormatParquet:
		return d.adapters[loaded.Payload.Format], envelope.Success(struct{}{}, "")
	default:
		return nil, unsupported[struct{}]()
	}
}
