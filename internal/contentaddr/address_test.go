package contentaddr

import "testing"

func TestAddress_Deterministic(t *testing.T) {
	a := Address("https://img.example.com/cover/42.jpg")
	b := Address("https://img.example.com/cover/42.jpg")
	if a != b {
		t.Errorf("Address() not deterministic: %q != %q", a, b)
	}
	if len(a) != Size {
		t.Errorf("len(Address()) = %d, want %d", len(a), Size)
	}
}

func TestAddress_DistinctKeys(t *testing.T) {
	if Address("a") == Address("b") {
		t.Error("different keys should not share an address")
	}
}

func TestAddress_EmptyKey(t *testing.T) {
	const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Address(""); got != emptySHA256 {
		t.Errorf("Address(\"\") = %q, want %q", got, emptySHA256)
	}
}

func TestAddress_UTF8(t *testing.T) {
	got := Address("Sigur Rós – Hoppípolla ♪")
	if !Valid(got) {
		t.Errorf("Address() = %q, not a valid storage id", got)
	}
}

func TestPath(t *testing.T) {
	got := Path("images", "k")
	want := "images/" + Address("k")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"hash", Address("x"), true},
		{"too short", "abc", false},
		{"uppercase", "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855", false},
		{"temp file", Address("x")[:Size-4] + ".tmp", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
