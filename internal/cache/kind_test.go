package cache

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "image", want: KindImage},
		{in: "images", want: KindImage},
		{in: " Payload ", want: KindPayload},
		{in: "payloads", want: KindPayload},
		{in: "AUDIO", want: KindAudio},
		{in: "video", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if !IsUnknownKindError(err) {
					t.Errorf("ParseKind(%q) error = %v, want unknown kind", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKind_Attributes(t *testing.T) {
	tests := []struct {
		kind       Kind
		dir        string
		compressed bool
	}{
		{KindImage, "images", false},
		{KindPayload, "payloads", true},
		{KindAudio, "audio", false},
	}

	for _, tt := range tests {
		if got := tt.kind.Dir(); got != tt.dir {
			t.Errorf("%v.Dir() = %q, want %q", tt.kind, got, tt.dir)
		}
		if got := tt.kind.compressed(); got != tt.compressed {
			t.Errorf("%v.compressed() = %v, want %v", tt.kind, got, tt.compressed)
		}
		if tt.kind.TTL() <= 0 {
			t.Errorf("%v.TTL() must be positive", tt.kind)
		}
	}
	if Kind(9).Valid() {
		t.Error("Kind(9) must be invalid")
	}
}
