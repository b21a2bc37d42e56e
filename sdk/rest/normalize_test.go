package rest

import "testing"

type product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestItems_RawArray(t *testing.T) {
	items, err := Items[product]([]byte(`[{"id":1,"name":"Serum"},{"id":2,"name":"Toner"}]`))
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 2 || items[0].Name != "Serum" || items[1].ID != 2 {
		t.Errorf("Items() = %+v", items)
	}
}

func TestItems_PageEnvelope(t *testing.T) {
	raw := []byte(`{"content":[{"id":3,"name":"Mask"}],"totalElements":41,"totalPages":21,"number":0,"size":2}`)
	items, err := Items[product](raw)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 1 || items[0].Name != "Mask" {
		t.Errorf("Items() = %+v", items)
	}
}

func TestPageOf_EnvelopeFields(t *testing.T) {
	raw := []byte(`{"content":[],"totalElements":41,"totalPages":21,"number":3,"size":2}`)
	p, err := PageOf[product](raw)
	if err != nil {
		t.Fatalf("PageOf() error = %v", err)
	}
	if p.TotalElements != 41 || p.TotalPages != 21 || p.Number != 3 || p.Size != 2 {
		t.Errorf("PageOf() = %+v", p)
	}
}

func TestPageOf_RawArrayIsSinglePage(t *testing.T) {
	p, err := PageOf[product]([]byte(` [{"id":1,"name":"Serum"}]`))
	if err != nil {
		t.Fatalf("PageOf() error = %v", err)
	}
	if p.TotalElements != 1 || p.TotalPages != 1 {
		t.Errorf("PageOf() = %+v", p)
	}
}

func TestPageOf_RejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{``, `{"message":"ok"}`, `"just a string"`, `{broken`} {
		if _, err := PageOf[product]([]byte(raw)); err == nil {
			t.Errorf("PageOf(%q) succeeded, want error", raw)
		}
	}
}
