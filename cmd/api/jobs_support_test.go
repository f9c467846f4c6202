package main

import (
	"reflect"
	"testing"
)

func TestSplitConverterArgs(t *testing.T) {
	args, err := splitConverterArgs(`--pages={pages} --profile "/opt/doc tools/default.cfg" {source}`)
	if err != nil {
		t.Fatalf("splitConverterArgs returned error: %v", err)
	}
	want := []string{"--pages={pages}", "--profile", "/opt/doc tools/default.cfg", "{source}"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSplitConverterArgsUnterminatedQuote(t *testing.T) {
	if _, err := splitConverterArgs(`--profile "/opt/unterminated`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}
