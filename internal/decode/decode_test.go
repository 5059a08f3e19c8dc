package decode

import (
	"errors"
	"testing"

	"cardtrack/internal/core"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		filename string
		mime     string
		want     Format
		ok       bool
	}{
		{"resumen.pdf", "", FormatPDF, true},
		{"RESUMEN.PDF", "application/octet-stream", FormatPDF, true},
		{"movimientos.csv", "", FormatCSV, true},
		{"foto.jpg", "", FormatJPEG, true},
		{"foto.jpeg", "", FormatJPEG, true},
		{"captura.png", "", FormatPNG, true},
		{"upload", "application/pdf", FormatPDF, true},
		{"upload", "text/csv; charset=utf-8", FormatCSV, true},
		{"upload.bin", "image/jpeg", FormatJPEG, true}, // unknown extension falls back to mime
		{"notas.txt", "text/plain", "", false},
		{"", "", "", false},
	}
	for i, tc := range cases {
		got, err := DetectFormat(tc.filename, tc.mime)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d: unexpected error %v", i, err)
			}
			if got != tc.want {
				t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, core.ErrUnsupportedFormat) {
			t.Fatalf("case %d: expected ErrUnsupportedFormat, got %v", i, err)
		}
	}
}

func TestDecodeCSVWithHeader(t *testing.T) {
	data := []byte("fecha,comercio,monto\n2024-03-01,Supermercado ABC,1500.00\n2024-03-05,Netflix,2500.00\n")

	content, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content.Header) != 3 || content.Header[0] != "fecha" {
		t.Fatalf("header mismatch: %v", content.Header)
	}
	if len(content.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(content.Rows))
	}
	if content.Rows[1][1] != "Netflix" {
		t.Fatalf("row mismatch: %v", content.Rows[1])
	}
}

func TestDecodeCSVSemicolonNoHeader(t *testing.T) {
	data := []byte("01/03/2024;FARMACITY;4500,00\n05/03/2024;SHELL;12000,50\n")

	content, err := decodeCSV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Header != nil {
		t.Fatalf("expected no header, got %v", content.Header)
	}
	if len(content.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(content.Rows))
	}
	if content.Rows[0][2] != "4500,00" {
		t.Fatalf("semicolon split failed: %v", content.Rows[0])
	}
}

func TestDetectDelimiter(t *testing.T) {
	if d := detectDelimiter([]byte("a;b;c\n")); d != ';' {
		t.Fatalf("got %q", d)
	}
	if d := detectDelimiter([]byte("a,b,c\n")); d != ',' {
		t.Fatalf("got %q", d)
	}
	// decimal commas must not flip a semicolon file to comma
	if d := detectDelimiter([]byte("01/03;COMPRA;1,50;2,30\n")); d != ';' {
		t.Fatalf("got %q", d)
	}
}

func TestLooksLikeHeader(t *testing.T) {
	if !looksLikeHeader([]string{"fecha", "comercio", "monto"}) {
		t.Fatal("expected header")
	}
	if looksLikeHeader([]string{"2024-03-01", "Supermercado", "1500.00"}) {
		t.Fatal("dates should not read as header")
	}
	if looksLikeHeader([]string{"", ""}) {
		t.Fatal("empty row is not a header")
	}
}

func TestSplitLines(t *testing.T) {
	lines := splitLines("  uno \n\n dos\r\ntres\n")
	if len(lines) != 3 || lines[0] != "uno" || lines[2] != "tres" {
		t.Fatalf("got %v", lines)
	}
}
