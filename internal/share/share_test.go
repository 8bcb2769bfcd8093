package share

import (
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/assignd/internal/model"
)

func sampleList() []model.Assignment {
	return []model.Assignment{
		{
			ID: 1756710000000, Title: "Essay", Subject: "History",
			EstimatedTime: 90, Difficulty: 3, Deadline: "2026-09-05",
			CompletedDates: []string{"2026-09-01"},
		},
		{
			ID: 1756710000001, Title: "Lab", Subject: "Chemistry",
			EstimatedTime: 60, Difficulty: 4, Deadline: "2026-09-03",
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	data, err := Export(sampleList())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Essay" || got[1].ID != 1756710000001 {
		t.Fatalf("unexpected import result %+v", got)
	}
}

func TestImportRejectsElementWithoutID(t *testing.T) {
	payload := `[{"id": 1, "title": "ok"}, {"title": "no id"}]`
	_, err := Import([]byte(payload))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if !strings.Contains(err.Error(), "element 1") {
		t.Fatalf("expected offending index in error, got %v", err)
	}
}

func TestImportRejectsElementWithoutTitle(t *testing.T) {
	payload := `[{"id": 1, "title": "ok"}, {"id": 2}]`
	if _, err := Import([]byte(payload)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	if _, err := Import([]byte(`{"id": 1, "title": "x"}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for object payload, got %v", err)
	}
}

func TestImportEmptyArray(t *testing.T) {
	got, err := Import([]byte(`[]`))
	if err != nil {
		t.Fatalf("import empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	payload, err := EncodePayload(sampleList())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.ContainsAny(payload, "+/=") {
		t.Fatalf("payload is not URL-safe: %q", payload)
	}
	got, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Subject != "Chemistry" {
		t.Fatalf("unexpected decode result %+v", got)
	}
}

func TestDecodePayloadBadEncoding(t *testing.T) {
	if _, err := DecodePayload("not base64!!"); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
