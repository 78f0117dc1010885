package censor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/envelope"
	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

const Marker = "***"

// MissingFieldPolicy decides what happens to a requested field the table does not have.
type MissingFieldPolicy string

const (
	PolicyIgnore MissingFieldPolicy = "ignore"
	// PolicyCreate adds the field as a column holding only the marker
	PolicyCreate MissingFieldPolicy = "create"
	PolicyFail   MissingFieldPolicy = "fail"
)

var ErrUnknownPolicy = utils.PermError("unknown missing field policy, expected ignore, create or fail")

func ParsePolicy(s string) (MissingFieldPolicy, error) {
	switch p := MissingFieldPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyIgnore, nil
	case PolicyIgnore, PolicyCreate, PolicyFail:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

type Censor struct {
	policy MissingFieldPolicy
}

func New(policy MissingFieldPolicy) *Censor {
	if policy == "" {
		policy = PolicyIgnore
	}
	return &Censor{policy: policy}
}

// Apply overwrites every value of each named column with Marker. The table is modified
// in place and returned as the payload. Applying it twice gives the same table.
func (c *Censor) Apply(ctx context.Context, tbl *table.Table, fields []string) envelope.Result[*table.Table] {
	logger := zerolog.Ctx(ctx)

	if tbl == nil {
		return envelope.FromError[*table.Table](&utils.ValidationError{Message: "cannot censor a nil table"})
	}

	if c.policy == PolicyFail {
		for _, field := range fields {
			if !tbl.HasColumn(field) {
				return envelope.FromError[*table.Table](&utils.ValidationError{
					Message: fmt.Sprintf("field %q is not a column of the data", field),
				})
			}
		}
	}

	censored := 0
	for _, field := range fields {
		if !tbl.HasColumn(field) && c.policy != PolicyCreate {
			logger.Debug().Str("field", field).Msg("field not in table, skipping")
			continue
		}
		if err := tbl.SetColumn(field, markers(tbl.NumRows())); err != nil {
			return envelope.FromError[*table.Table](fmt.Errorf("error in SetColumn: %w", err))
		}
		censored++
	}

	logger.Debug().Int("fields", censored).Int("rows", tbl.NumRows()).Msg("censored table")
	return envelope.Success(tbl, fmt.Sprintf("censored %d fields", censored))
}

func markers(n int) []any {
	vals := make([]any, n)
	for i := range vals {
		vals[i] = Marker
	}
	return vals
}
