package censor

import (
	"context"
	"strings"
	"testing"

	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

func students(t *testing.T) *table.Table {
	tbl := table.New()
	for _, col := range []struct {
		name string
		vals []any
	}{
		{"student_id", []any{"1234", "5678", "9012"}},
		{"name", []any{"John Smith", "Jane Doe", "Ann Lee"}},
		{"email_address", []any{"j.smith@email.com", "j.doe@email.com", "a.lee@email.com"}},
		{"graduation_date", []any{"2024-03-31", nil, "2024-06-30"}},
	} {
		if err := tbl.AddColumn(col.name, col.vals); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func TestApplyCoversFields(t *testing.T) {
	tbl := students(t)
	before := tbl.Clone()

	res := New(PolicyIgnore).Apply(context.Background(), tbl, []string{"name", "email_address"})
	if !res.OK() {
		t.Fatalf("unexpected failure %+v", res)
	}
	if res.Payload != tbl {
		t.Fatal("expected the table to be censored in place")
	}
	for _, name := range []string{"name", "email_address"} {
		vals, _ := tbl.Column(name)
		for i, v := range vals {
			if v != Marker {
				t.Fatalf("%s[%d] = %v, want %s", name, i, v, Marker)
			}
		}
	}
	for _, name := range []string{"student_id", "graduation_date"} {
		got, _ := tbl.Column(name)
		want, _ := before.Column(name)
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s[%d] changed from %v to %v", name, i, want[i], got[i])
			}
		}
	}
	if tbl.NumRows() != 3 || tbl.NumColumns() != 4 {
		t.Fatalf("shape changed to %dx%d", tbl.NumRows(), tbl.NumColumns())
	}
}

func TestApplyIdempotent(t *testing.T) {
	c := New(PolicyCreate)
	fields := []string{"email_address", "email_address", "phone"}

	once := students(t)
	c.Apply(context.Background(), once, fields)
	twice := once.Clone()
	c.Apply(context.Background(), twice, fields)

	if !once.Equal(twice) {
		t.Fatal("second application changed the table")
	}
}

func TestApplyMissingFieldPolicies(t *testing.T) {
	ctx := context.Background()

	tbl := students(t)
	if res := New(PolicyIgnore).Apply(ctx, tbl, []string{"phone"}); !res.OK() || tbl.HasColumn("phone") {
		t.Fatalf("ignore should skip the field, got %+v", res)
	}

	tbl = students(t)
	if res := New(PolicyCreate).Apply(ctx, tbl, []string{"phone"}); !res.OK() {
		t.Fatalf("unexpected failure %+v", res)
	}
	vals, ok := tbl.Column("phone")
	if !ok || len(vals) != 3 || vals[2] != Marker {
		t.Fatalf("create should add a marker column, got %v", vals)
	}

	tbl = students(t)
	res := New(PolicyFail).Apply(ctx, tbl, []string{"name", "phone"})
	if res.OK() || res.Kind != utils.KindValidation || !strings.Contains(res.Message, "phone") {
		t.Fatalf("expected validation failure naming the field, got %+v", res)
	}
	if v, _ := tbl.Column("name"); v[0] != "John Smith" {
		t.Fatal("failed censor must not modify the table")
	}
}

func TestApplyNilTable(t *testing.T) {
	res := New("").Apply(context.Background(), nil, []string{"a"})
	if res.OK() || res.Kind != utils.KindValidation {
		t.Fatalf("expected validation failure, got %+v", res)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MissingFieldPolicy
		wantErr bool
	}{
		{"", PolicyIgnore, false},
		{"ignore", PolicyIgnore, false},
		{"CREATE", PolicyCreate, false},
		{" fail ", PolicyFail, false},
		{"explode", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}
