package ecb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<gesmes:Sender>
		<gesmes:name>European Central Bank</gesmes:name>
	</gesmes:Sender>
	<Cube>
		<Cube time="2024-01-05">
			<Cube currency="USD" rate="1.0921"/>
			<Cube currency="JPY" rate="158.27"/>
			<Cube currency="GBP" rate="0.86128"/>
		</Cube>
		<Cube time="2024-01-04">
			<Cube currency="USD" rate="1.0953"/>
			<Cube currency="JPY" rate="158.68"/>
			<Cube currency="GBP" rate="0.86293"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func TestParse(t *testing.T) {
	days, err := Parse(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	// Document order is preserved; sorting is the dataset's job.
	if got := days[0].Date.Format("2006-01-02"); got != "2024-01-05" {
		t.Errorf("first day = %s, want 2024-01-05", got)
	}

	usd, ok := days[0].Rates["USD"]
	if !ok {
		t.Fatal("missing USD rate")
	}
	want, _ := decimal.NewFromString("1.0921")
	if !usd.Equal(want) {
		t.Errorf("USD rate = %s, want %s", usd, want)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "hello"},
		{"no days", `<Envelope><Cube></Cube></Envelope>`},
		{"bad date", `<Envelope><Cube><Cube time="yesterday"><Cube currency="USD" rate="1.1"/></Cube></Cube></Envelope>`},
		{"bad rate", `<Envelope><Cube><Cube time="2024-01-05"><Cube currency="USD" rate="a lot"/></Cube></Cube></Envelope>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleXML))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	days, raw, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Errorf("expected 2 days, got %d", len(days))
	}
	if string(raw) != sampleXML {
		t.Error("raw document does not match served document")
	}
}

func TestClient_Fetch_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleXML))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	client.retryBase = time.Millisecond

	days, _, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(days) != 2 {
		t.Errorf("expected 2 days, got %d", len(days))
	}
}

func TestClient_Fetch_NoRetryOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	if _, _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	snap := NewSnapshot(t.TempDir())

	if _, _, err := snap.Load(); err != ErrNoSnapshot {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	if err := snap.Store([]byte(sampleXML)); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	days, modTime, err := snap.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(days) != 2 {
		t.Errorf("expected 2 days, got %d", len(days))
	}
	if modTime.IsZero() {
		t.Error("expected non-zero mod time")
	}
}

func TestSnapshot_Disabled(t *testing.T) {
	snap := NewSnapshot("")

	if snap.Enabled() {
		t.Error("expected snapshot to be disabled")
	}
	if err := snap.Store([]byte(sampleXML)); err != nil {
		t.Errorf("store on disabled snapshot should be a no-op, got %v", err)
	}
	if _, _, err := snap.Load(); err != ErrNoSnapshot {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshot(dir)

	if err := snap.Store([]byte("not xml at all")); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if _, _, err := snap.Load(); err == nil || err == ErrNoSnapshot {
		t.Errorf("expected parse error, got %v", err)
	}
}
