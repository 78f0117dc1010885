package obfuscator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/danthegoodman1/obfuscator/censor"
	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/formats"
	"github.com/danthegoodman1/obfuscator/s3_helper"
	"github.com/danthegoodman1/obfuscator/s3_helper/s3_memory"
	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

const studentsCSV = `student_id,name,course,graduation_date,email
1234,John Smith,Software,2024-03-31,j.smith@email.com
5678,Jane Doe,Data,2024-06-30,j.doe@email.com
9012,Ann Lee,Cloud,2024-09-30,a.lee@email.com
`

func setup(t *testing.T, policy censor.MissingFieldPolicy) (*s3_memory.Client, *Obfuscator) {
	t.Helper()
	mem := s3_memory.NewClient("b", "b2")
	store := datastore.NewSchemeRouter().Register("s3", s3_helper.NewS3DataStoreWithClient(mem))
	err := store.Put(context.Background(), datastore.Location{Scheme: "s3", Bucket: "b", Key: "f.csv"}, []byte(studentsCSV), "text/csv")
	if err != nil {
		t.Fatal(err)
	}
	return mem, New(Config{Store: store, MissingFields: policy})
}

func TestRunCensorsCSV(t *testing.T) {
	mem, o := setup(t, censor.PolicyIgnore)

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://b/f.csv",
		PIIFields:       []string{"email"},
		Destination:     "s3://b2/out.csv",
	})
	if !res.OK() {
		t.Fatalf("run failed: %+v", res)
	}
	if res.Message != "csv written to s3://b2/out.csv" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	b, _, ok := mem.Object("b2", "out.csv")
	if !ok {
		t.Fatal("output was not stored")
	}
	got, err := (&formats.CSVCodec{Comma: ','}).Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	want, err := (&formats.CSVCodec{Comma: ','}).Decode([]byte(studentsCSV))
	if err != nil {
		t.Fatal(err)
	}

	if got.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", got.NumRows())
	}
	emails, _ := got.Column("email")
	for i, v := range emails {
		if v != censor.Marker {
			t.Fatalf("email[%d] = %v", i, v)
		}
	}
	for _, col := range want.Columns() {
		if col == "email" {
			continue
		}
		gotCol, _ := got.Column(col)
		wantCol, _ := want.Column(col)
		for i := range wantCol {
			if gotCol[i] != wantCol[i] {
				t.Fatalf("%s[%d] changed from %v to %v", col, i, wantCol[i], gotCol[i])
			}
		}
	}
}

func TestRunMalformed(t *testing.T) {
	_, o := setup(t, censor.PolicyIgnore)

	for _, req := range []*Request{
		{},
		nil,
		{FileToObfuscate: "s3://b/f.csv", PIIFields: []string{"email"}},
		{FileToObfuscate: "s3://b/f.csv", Destination: "s3://b2/out.csv"},
	} {
		res := o.Run(context.Background(), req)
		if res.OK() || res.Kind != utils.KindMalformedRequest || res.Message != "json input is incorrect" {
			t.Fatalf("Run(%+v) = %+v", req, res)
		}
	}
}

func TestRunEvent(t *testing.T) {
	mem, o := setup(t, censor.PolicyIgnore)

	res := o.RunEvent(context.Background(), []byte(`{}`))
	if res.OK() || res.Message != MsgMalformedRequest {
		t.Fatalf("unexpected result %+v", res)
	}
	res = o.RunEvent(context.Background(), []byte(`not json`))
	if res.OK() || res.Kind != utils.KindMalformedRequest {
		t.Fatalf("unexpected result %+v", res)
	}

	res = o.RunEvent(context.Background(), []byte(`{"file_to_obfuscate":"s3://b/f.csv","pii_fields":["name"],"destination":"s3://b2/events.csv"}`))
	if !res.OK() {
		t.Fatalf("run failed: %+v", res)
	}
	if _, _, ok := mem.Object("b2", "events.csv"); !ok {
		t.Fatal("output was not stored")
	}
}

func TestRunMissingBucket(t *testing.T) {
	_, o := setup(t, censor.PolicyIgnore)

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://missing/f.csv",
		PIIFields:       []string{"email"},
		Destination:     "s3://b2/out.csv",
	})
	if res.OK() || res.Code != "NoSuchBucket" || res.Kind != utils.KindTransport {
		t.Fatalf("expected NoSuchBucket, got %+v", res)
	}
}

func TestRunUnsupported(t *testing.T) {
	mem, o := setup(t, censor.PolicyIgnore)

	for _, req := range []*Request{
		{FileToObfuscate: "s3://b/f.txt", PIIFields: []string{"email"}, Destination: "s3://b2/out.csv"},
		{FileToObfuscate: "s3://b/f.csv", PIIFields: []string{"email"}, Destination: "s3://b2/out.txt"},
	} {
		res := o.Run(context.Background(), req)
		if res.OK() || res.Message != "Unsupported data type. Can only process csv, json, and parquet file types" {
			t.Fatalf("Run(%+v) = %+v", req, res)
		}
	}
	if _, _, ok := mem.Object("b2", "out.txt"); ok {
		t.Fatal("nothing should have been written")
	}
}

func TestRunMissingFieldFails(t *testing.T) {
	mem, o := setup(t, censor.PolicyFail)

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://b/f.csv",
		PIIFields:       []string{"phone"},
		Destination:     "s3://b2/out.csv",
	})
	if res.OK() || res.Kind != utils.KindValidation || !strings.Contains(res.Message, "phone") {
		t.Fatalf("expected validation failure, got %+v", res)
	}
	if _, _, ok := mem.Object("b2", "out.csv"); ok {
		t.Fatal("nothing should have been written")
	}
}

func TestRunPrefixDestination(t *testing.T) {
	mem, o := setup(t, censor.PolicyIgnore)

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://b/f.csv",
		PIIFields:       []string{"email"},
		Destination:     "s3://b2/processed/",
	})
	if !res.OK() {
		t.Fatalf("run failed: %+v", res)
	}
	if !strings.HasPrefix(res.Payload, "s3://b2/processed/obfuscated_data-") || !strings.HasSuffix(res.Payload, ".csv") {
		t.Fatalf("unexpected destination %q", res.Payload)
	}
	key := strings.TrimPrefix(res.Payload, "s3://b2/")
	if _, _, ok := mem.Object("b2", key); !ok {
		t.Fatalf("no object at %s", key)
	}
}

type panicStore struct{}

func (panicStore) Get(context.Context, datastore.Location) ([]byte, error) {
	panic("boom")
}

func (panicStore) Put(context.Context, datastore.Location, []byte, string) error {
	panic("boom")
}

func TestRunRecoversPanic(t *testing.T) {
	o := New(Config{Store: panicStore{}})

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://b/f.csv",
		PIIFields:       []string{"email"},
		Destination:     "s3://b2/out.csv",
	})
	if res.OK() || res.Kind != utils.KindUnexpected || res.Message != "unexpected error" {
		t.Fatalf("expected unexpected error, got %+v", res)
	}
}

func TestRunCreatedColumnCollidesInParquet(t *testing.T) {
	mem, o := setup(t, censor.PolicyCreate)

	src := table.New()
	if err := src.AddColumn("email", []any{"a@b.com", "c@d.com"}); err != nil {
		t.Fatal(err)
	}
	b, err := (&formats.ParquetCodec{NP: 4}).Encode(src)
	if err != nil {
		t.Fatal(err)
	}
	mem.AddBucket("pq")
	if _, err := mem.PutObjectWithContext(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String("pq"),
		Key:    aws.String("in.parquet"),
		Body:   bytes.NewReader(b),
	}); err != nil {
		t.Fatal(err)
	}

	res := o.Run(context.Background(), &Request{
		FileToObfuscate: "s3://pq/in.parquet",
		PIIFields:       []string{"Email"},
		Destination:     "s3://b2/out.parquet",
	})
	if res.OK() || res.Kind != utils.KindCodec {
		t.Fatalf("expected a codec failure, got %+v", res)
	}
	if _, _, ok := mem.Object("b2", "out.parquet"); ok {
		t.Fatal("an unreadable file was stored")
	}
}
