package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// buildTemplatePDF assembles a one-page AcroForm document mirroring the
// layout of the SSA-3373 templates: two multiline narrative fields whose
// widgets are 200 points wide, a single-line name field, and a checkbox.
// The xref offsets are computed while writing so the fixture stays valid
// when the field dictionaries change.
func buildTemplatePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R /AcroForm 5 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv 4 0 R >> >> /Annots [6 0 R 7 0 R 8 0 R 9 0 R] >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Fields [6 0 R 7 0 R 8 0 R 9 0 R] /DA (/Helv 11 Tf 0 g) /DR << /Font << /Helv 4 0 R >> >> >>",
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (N5text[0]) /Ff 4096 /Rect [40 600 240 700] /DA (/Helv 11 Tf 0 g) /P 3 0 R >>",
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (N6text[0]) /Ff 4096 /Rect [40 480 240 580] /DA (/Helv 11 Tf 0 g) /P 3 0 R >>",
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (FullName[0]) /Rect [40 720 440 736] /DA (/Helv 11 Tf 0 g) /P 3 0 R >>",
		"<< /Type /Annot /Subtype /Widget /FT /Btn /T (CheckBox1[0]) /Rect [40 440 54 454] /V /Off /P 3 0 R >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	return buf.Bytes()
}

// writeTemplate places the fixture template into dir under the given name.
func writeTemplate(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildTemplatePDF(), 0644); err != nil {
		t.Fatalf("Failed to write template fixture: %v", err)
	}
	return path
}

// readBackFields parses a filled document and indexes its fields by name,
// closing the loop between what was written and what a viewer would see.
func readBackFields(t *testing.T, pdfBytes []byte) map[string]*fieldRef {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roundtrip.pdf")
	if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
		t.Fatalf("Failed to write round-trip file: %v", err)
	}

	ctx, err := readTemplateContext(path)
	if err != nil {
		t.Fatalf("Failed to re-read filled document: %v", err)
	}

	fields, err := collectFormFields(ctx)
	if err != nil {
		t.Fatalf("Failed to collect fields from filled document: %v", err)
	}

	return indexFields(fields)
}
