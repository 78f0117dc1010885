package datastore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/danthegoodman1/obfuscator/gologger"
	"github.com/danthegoodman1/obfuscator/utils"
)

var (
	logger = gologger.NewLogger()
)

type (
	// DataStore is a blob store addressed by Location. Implementations return
	// *utils.NotFoundError when the object is absent and *utils.TransportError for
	// every other storage failure.
	DataStore interface {
		Get(ctx context.Context, loc Location) ([]byte, error)
		Put(ctx context.Context, loc Location, data []byte, contentType string) error
	}

	// Location addresses one object as scheme://bucket/key.
	Location struct {
		Scheme string
		Bucket string
		Key    string
	}

	// SchemeRouter sends each call to the store registered for the location's scheme.
	SchemeRouter struct {
		stores map[string]DataStore
	}
)

func ParseLocation(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, &utils.TransportError{Code: utils.CodeInvalidURI, URI: uri, Err: err}
	}
	loc := Location{
		Scheme: strings.ToLower(u.Scheme),
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}
	if loc.Scheme == "" || loc.Bucket == "" || loc.Key == "" {
		return Location{}, &utils.TransportError{Code: utils.CodeInvalidURI, URI: uri, Err: fmt.Errorf("expected scheme://bucket/key")}
	}
	return loc, nil
}

func (l Location) String() string {
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

func NewSchemeRouter() *SchemeRouter {
	return &SchemeRouter{stores: make(map[string]DataStore)}
}

// Register binds a scheme such as "s3" or "file" to a store.
func (sr *SchemeRouter) Register(scheme string, ds DataStore) *SchemeRouter {
	sr.stores[strings.ToLower(scheme)] = ds
	logger.Debug().Str("scheme", scheme).Msgf("registered %T", ds)
	return sr
}

func (sr *SchemeRouter) Schemes() []string {
	var schemes []string
	for s := range sr.stores {
		schemes = append(schemes, s)
	}
	return schemes
}

func (sr *SchemeRouter) storeFor(loc Location) (DataStore, error) {
	ds, ok := sr.stores[loc.Scheme]
	if !ok {
		return nil, &utils.TransportError{Code: utils.CodeUnsupportedScheme, URI: loc.String()}
	}
	return ds, nil
}

func (sr *SchemeRouter) Get(ctx context.Context, loc Location) ([]byte, error) {
	ds, err := sr.storeFor(loc)
	if err != nil {
		return nil, err
	}
	return ds.Get(ctx, loc)
}

func (sr *SchemeRouter) Put(ctx context.Context, loc Location, data []byte, contentType string) error {
	ds, err := sr.storeFor(loc)
	if err != nil {
		return err
	}
	return ds.Put(ctx, loc, data, contentType)
}
