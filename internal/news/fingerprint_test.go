package news

import "testing"

func TestFingerprint(t *testing.T) {
	tests := []struct {
		title, summary string
		want           string
	}{
		{"", "", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"Hel", "lo", "f7ff9e8b7bb2e09b70935a5d785e0cc5d9d0abf0"},
		{"chicken burger", "price rises", "acfe693644bda1b044232157ebf908602ad0fa65"},
		{"치킨 가격 인상", "버거킹 신메뉴 출시", "ecc964a0e50284fd18f43d09b4e48ddc6c399bc4"},
	}
	for _, tt := range tests {
		if got := Fingerprint(tt.title, tt.summary); got != tt.want {
			t.Errorf("Fingerprint(%q, %q) = %s, want %s", tt.title, tt.summary, got, tt.want)
		}
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	first := Fingerprint("맥도날드 가격", "맥도날드가 일부 메뉴 가격을 올린다")
	for i := 0; i < 10; i++ {
		if got := Fingerprint("맥도날드 가격", "맥도날드가 일부 메뉴 가격을 올린다"); got != first {
			t.Fatalf("fingerprint changed between calls: %s vs %s", first, got)
		}
	}
	if Fingerprint("ab", "c") != Fingerprint("a", "bc") {
		t.Error("fingerprint must hash the plain concatenation")
	}
	if Fingerprint("a", "b") == Fingerprint("b", "a") {
		t.Error("different inputs should give different fingerprints")
	}
}
