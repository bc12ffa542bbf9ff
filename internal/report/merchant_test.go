package report

import "testing"

func TestMerchantKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WHOLE FOODS #1234", "whole foods"},
		{"  Shell   Oil 5544  ", "shell oil"},
		{"AMAZON.COM*2K4L1 AMZN.COM/BILL WA", "amazon.com*kl amzn.com/b"},
		{"12345", UnknownMerchant},
		{"", UnknownMerchant},
		{"Straße Café", "strasse café"},
	}
	for _, tt := range tests {
		if got := MerchantKey(tt.in); got != tt.want {
			t.Errorf("MerchantKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMerchantNormalizerMemoizes(t *testing.T) {
	n := NewMerchantNormalizer()
	for i := 0; i < 3; i++ {
		if got := n.Key("SHELL OIL 1"); got != "shell oil" {
			t.Fatalf("got %q", got)
		}
	}
	hits, misses := n.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}
