package services

import (
	"context"
	"errors"
	"testing"

	"cardtrack/internal/core"
	"cardtrack/internal/decode"
	"cardtrack/internal/extract"
)

func newIngestFixture() (*IngestService, *fakeStore, *fakePublisher) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewIngestService(
		decode.New(),
		&extract.Extractor{ReferenceYear: 2024},
		store, store, pub)
	return svc, store, pub
}

func TestIngestCSVBatch(t *testing.T) {
	svc, store, pub := newIngestFixture()

	csv := []byte("fecha,comercio,monto\n" +
		"2024-03-01,Supermercado ABC,1500.00\n" +
		"2024-03-05,Uber,800.00\n" +
		"2024-03-07,Sin Importe,\n")

	result, err := svc.Ingest(context.Background(), 1, "movimientos.csv", "text/csv", csv, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TransactionsImported != 2 {
		t.Fatalf("imported %d, want 2", result.TransactionsImported)
	}
	if result.TotalAmount != 2300.00 {
		t.Fatalf("total %v, want 2300.00", result.TotalAmount)
	}

	st := result.Statement
	if st.Month != 3 || st.Year != 2024 {
		t.Fatalf("statement period %d/%d, want 3/2024", st.Month, st.Year)
	}
	if st.TransactionCount != 2 {
		t.Fatalf("statement count %d, want 2", st.TransactionCount)
	}
	if st.DolarRate != 1000 {
		t.Fatalf("dolar rate %v, want 1000", st.DolarRate)
	}

	// merchants land in their keyword categories
	comida := store.categoryID("Comida y Restaurantes")
	transporte := store.categoryID("Transporte")
	if got := store.txns[0].CategoryID; got == nil || *got != comida {
		t.Fatalf("supermarket category %v, want %d", got, comida)
	}
	if got := store.txns[1].CategoryID; got == nil || *got != transporte {
		t.Fatalf("uber category %v, want %d", got, transporte)
	}

	if len(pub.published) != 1 || pub.published[0] != st.ID {
		t.Fatalf("published %v, want [%d]", pub.published, st.ID)
	}
}

func TestIngestEmptyBatchAborts(t *testing.T) {
	svc, store, pub := newIngestFixture()

	csv := []byte("fecha,comercio,monto\nsin fecha,Basura,abc\n")
	_, err := svc.Ingest(context.Background(), 1, "vacio.csv", "text/csv", csv, 1000)
	if !errors.Is(err, core.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}

	if len(store.statements) != 0 || len(store.txns) != 0 {
		t.Fatal("nothing may be persisted for an empty batch")
	}
	if len(pub.published) != 0 {
		t.Fatal("no event may be published for an empty batch")
	}
}

func TestIngestRejectsBadRate(t *testing.T) {
	svc, _, _ := newIngestFixture()

	for _, rate := range []float64{0, -1} {
		_, err := svc.Ingest(context.Background(), 1, "a.csv", "text/csv", []byte("x"), rate)
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Field != "dolar_rate" {
			t.Fatalf("rate %v: expected dolar_rate validation error, got %v", rate, err)
		}
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	svc, _, _ := newIngestFixture()

	_, err := svc.Ingest(context.Background(), 1, "notas.txt", "text/plain", []byte("hola"), 1000)
	if !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	svc, store, pub := newIngestFixture()
	pub.err = errors.New("broker down")

	csv := []byte("fecha,comercio,monto\n2024-03-01,COTO,1000.00\n")
	result, err := svc.Ingest(context.Background(), 1, "r.csv", "text/csv", csv, 500)
	if err != nil {
		t.Fatalf("publish failure must not fail ingestion: %v", err)
	}
	if result.TransactionsImported != 1 || len(store.txns) != 1 {
		t.Fatal("transaction must be persisted despite publish failure")
	}
}

func TestIngestStoreFailurePropagates(t *testing.T) {
	svc, store, pub := newIngestFixture()
	store.createErr = errors.New("disk full")

	csv := []byte("fecha,comercio,monto\n2024-03-01,COTO,1000.00\n")
	_, err := svc.Ingest(context.Background(), 1, "r.csv", "text/csv", csv, 500)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pub.published) != 0 {
		t.Fatal("no event may be published when the write fails")
	}
}

func TestBatchPeriodMostCommonMonth(t *testing.T) {
	txns := []core.Transaction{
		{Date: core.NewDate(2024, 2, 28)},
		{Date: core.NewDate(2024, 3, 1)},
		{Date: core.NewDate(2024, 3, 15)},
	}
	month, year := batchPeriod(extract.Metadata{}, txns)
	if month != 3 || year != 2024 {
		t.Fatalf("got %d/%d, want 3/2024", month, year)
	}

	// explicit header metadata wins
	month, year = batchPeriod(extract.Metadata{Month: 12, Year: 2025}, txns)
	if month != 12 || year != 2025 {
		t.Fatalf("got %d/%d, want 12/2025", month, year)
	}
}
