package sharedtypes

import "testing"

func TestCanonicalParticipantID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ParticipantID
	}{
		{
			name: "plain id passes through",
			raw:  "alice",
			want: "alice",
		},
		{
			name: "surrounding whitespace stripped",
			raw:  "  alice \n",
			want: "alice",
		},
		{
			name: "double quotes stripped",
			raw:  `"alice"`,
			want: "alice",
		},
		{
			name: "single quotes stripped",
			raw:  "'alice'",
			want: "alice",
		},
		{
			name: "hex id lowercased",
			raw:  "A1B2C3",
			want: "a1b2c3",
		},
		{
			name: "decimal loses leading zeros",
			raw:  "007",
			want: "7",
		},
		{
			name: "all zeros collapse to one",
			raw:  "0000",
			want: "0",
		},
		{
			name: "quoted decimal matches numeric form",
			raw:  `"42"`,
			want: "42",
		},
		{
			name: "mixed alphanumeric keeps leading zeros",
			raw:  "0x7f",
			want: "0x7f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalParticipantID(tt.raw); got != tt.want {
				t.Errorf("CanonicalParticipantID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParticipantIDFromInt64(t *testing.T) {
	if got := ParticipantIDFromInt64(7); got != CanonicalParticipantID("007") {
		t.Errorf("numeric 7 and %q should canonicalize identically, got %q", "007", got)
	}
	if got := ParticipantIDFromInt64(-3); got != "-3" {
		t.Errorf("ParticipantIDFromInt64(-3) = %q, want %q", got, "-3")
	}
}
