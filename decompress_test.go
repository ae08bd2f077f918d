package mamanalysis

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	for _, v := range []struct {
		head     []byte
		expected DataType
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0x00}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0x14}, DataTypeZip},
		{[]byte{0x42, 0x5a, 0x68, 0x39}, DataTypeBZip2},
		{[]byte("sample\tTCGA-A1"), DataTypeNoCompression},
		{[]byte{0x1f}, DataTypeNoCompression},
		{nil, DataTypeNoCompression},
	} {
		if got := DetectDataType(v.head); got != v.expected {
			t.Fatalf("head %x: got %s, expected %s", v.head, got, v.expected)
		}
	}
}

func TestMaybeDecompressGzip(t *testing.T) {
	payload := "sample\tCLC\nTCGA-A1-A0SB-01\t3.2\n"

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	r, dt, err := MaybeDecompress(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeGzip {
		t.Fatalf("Expected gzip, got %s", dt)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != payload {
		t.Fatalf("Got %q, expected %q", out, payload)
	}
}

func TestMaybeDecompressZip(t *testing.T) {
	payload := "sample\tCLC\nS1\t1\n"

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("expression.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	r, dt, err := MaybeDecompress(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeZip {
		t.Fatalf("Expected zip, got %s", dt)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != payload {
		t.Fatalf("Got %q, expected %q", out, payload)
	}
}

func TestMaybeDecompressEmptyZip(t *testing.T) {
	var buf bytes.Buffer
	if err := zip.NewWriter(&buf).Close(); err != nil {
		t.Fatal(err)
	}
	// An archive without entries starts with the end-of-directory record,
	// so it is not recognized as zip and is passed through.
	if _, dt, err := MaybeDecompress(&buf); err != nil || dt == DataTypeZip {
		t.Fatalf("got %s, %v", dt, err)
	}
}

func TestMaybeDecompressPlainKeepsEveryByte(t *testing.T) {
	payload := "ab"
	r, dt, err := MaybeDecompress(bytes.NewBufferString(payload))
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeNoCompression {
		t.Fatalf("Expected plain, got %s", dt)
	}
	out, _ := io.ReadAll(r)
	if string(out) != payload {
		t.Fatalf("Got %q, expected %q", out, payload)
	}
}

func TestOpenLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survival.tsv")
	if err := os.WriteFile(path, []byte("sample\tOS\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	in, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	out, err := io.ReadAll(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "sample\tOS\n" {
		t.Fatalf("Got %q", out)
	}
}

func TestSplitGoogleStoragePath(t *testing.T) {
	bucket, object, err := SplitGoogleStoragePath("gs://tcga-brca/xena/HiSeqV2.gz")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "tcga-brca" || object != "xena/HiSeqV2.gz" {
		t.Fatalf("Got bucket %q object %q", bucket, object)
	}

	if _, _, err := SplitGoogleStoragePath("gs://bucket-only"); err == nil {
		t.Fatalf("Expected an error for a path without an object")
	}
}
