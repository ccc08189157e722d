package favorites

import (
	"encoding/json"
	"testing"
)

func TestTriStateJSON(t *testing.T) {
	tests := []struct {
		in   string
		want TriState
	}{
		{in: `"true"`, want: True},
		{in: `"false"`, want: False},
		{in: `"undefined"`, want: Unset},
		{in: `true`, want: True},
		{in: `false`, want: False},
		{in: `null`, want: Unset},
	}
	for _, tt := range tests {
		var got TriState
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("unmarshal %s = %v, want %v", tt.in, got, tt.want)
		}
	}

	out, err := json.Marshal(Unset)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"undefined"` {
		t.Fatalf("marshal Unset = %s", out)
	}

	var bad TriState
	if err := json.Unmarshal([]byte(`"maybe"`), &bad); err == nil {
		t.Fatal("expected error for invalid tri-state")
	}
}

func TestTriStateResolve(t *testing.T) {
	if !Unset.Resolve(true) || Unset.Resolve(false) {
		t.Fatal("unset must use default")
	}
	if !True.Resolve(false) || False.Resolve(true) {
		t.Fatal("set values must override default")
	}
	if Unset.IsSet() || !True.IsSet() || !False.IsSet() {
		t.Fatal("only true and false count as set")
	}
}

func TestSegment(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "/a/b/c", want: "c"},
		{in: "/a/b/c/", want: "c"},
		{in: "sshfs u@h:/srv/x", want: "x"},
		{in: "u@host:", want: "host"},
		{in: "C:/Users/me/vault", want: "vault"},
		{in: "relative", want: "relative"},
	}
	for _, tt := range tests {
		if got := segment(tt.in); got != tt.want {
			t.Fatalf("segment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
