package convert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCommandConverterSuccess(t *testing.T) {
	conv, err := NewCommandConverter("/bin/echo", []string{"{source}"})
	if err != nil {
		t.Fatalf("NewCommandConverter returned error: %v", err)
	}

	doc, err := conv.Convert(context.Background(), Request{Source: "doc-A.pdf"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if doc.Text != "doc-A.pdf\n" {
		t.Fatalf("unexpected output: %q", doc.Text)
	}
}

func TestCommandConverterPagesPlaceholder(t *testing.T) {
	conv, err := NewCommandConverter("/bin/echo", []string{"--pages={pages}", "{source}"})
	if err != nil {
		t.Fatalf("NewCommandConverter returned error: %v", err)
	}

	doc, err := conv.Convert(context.Background(), Request{
		Source:    "doc.pdf",
		PageRange: &PageRange{Start: 2, End: 5},
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if doc.Text != "--pages=2-5 doc.pdf\n" {
		t.Fatalf("unexpected output with range: %q", doc.Text)
	}

	// 範囲未指定のときは {pages} を含む引数ごと取り除かれる
	doc, err = conv.Convert(context.Background(), Request{Source: "doc.pdf"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if doc.Text != "doc.pdf\n" {
		t.Fatalf("unexpected output without range: %q", doc.Text)
	}
}

func TestCommandConverterFailure(t *testing.T) {
	conv, err := NewCommandConverter("/bin/sh", []string{"-c", "echo broken input >&2; exit 3"})
	if err != nil {
		t.Fatalf("NewCommandConverter returned error: %v", err)
	}

	_, err = conv.Convert(context.Background(), Request{Source: "doc.pdf"})
	var convErr *Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if convErr.Code != "CONVERT_FAILED" {
		t.Fatalf("unexpected code: %s", convErr.Code)
	}
	if !strings.Contains(convErr.Message, "broken input") {
		t.Fatalf("message should contain stderr: %q", convErr.Message)
	}
}

func TestCommandConverterTimeout(t *testing.T) {
	conv, err := NewCommandConverter("/bin/sleep", []string{"10"})
	if err != nil {
		t.Fatalf("NewCommandConverter returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = conv.Convert(ctx, Request{Source: "doc.pdf"})
	var convErr *Error
	if !errors.As(err, &convErr) || convErr.Code != "CONVERT_TIMEOUT" {
		t.Fatalf("expected CONVERT_TIMEOUT, got %v", err)
	}
}

func TestCommandConverterValidation(t *testing.T) {
	if _, err := NewCommandConverter("  ", nil); err == nil {
		t.Fatal("expected error for empty command")
	}

	conv, err := NewCommandConverter("/bin/echo", []string{"{source}"})
	if err != nil {
		t.Fatalf("NewCommandConverter returned error: %v", err)
	}

	if _, err := conv.Convert(context.Background(), Request{Source: ""}); err == nil {
		t.Fatal("expected error for empty source")
	}
	_, err = conv.Convert(context.Background(), Request{
		Source:    "doc.pdf",
		PageRange: &PageRange{Start: 0, End: 3},
	})
	var convErr *Error
	if !errors.As(err, &convErr) || convErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
