package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("a_b *c* [d] `e`", MarkdownV1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a\\_b \\*c\\* \\[d] \\`e\\`"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("v1.2 (beta)!", MarkdownV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "v1\\.2 \\(beta\\)\\!"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatalf("expected error for unknown version")
	}
}

func TestStringOr(t *testing.T) {
	name := "report.pdf"
	if StringOr(&name, "-") != "report.pdf" || StringOr(nil, "-") != "-" {
		t.Fatalf("StringOr mismatch")
	}
}
