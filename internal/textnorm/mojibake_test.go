package textnorm

import "testing"

func TestRepairMojibake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latin-1 division", "Ã·", "÷"},
		{"latin-1 multiplication", "Ã\u0097", "×"},
		{"windows-1252 multiplication", "Ã—", "×"},
		{"windows-1252 umlaut", "PrÃ¼fung", "Prüfung"},
		{"operator list", "+,Ã·", "+,÷"},
		{"broken pair falls back to table", "Ã,Ã·", "×,÷"},
		{"clean text untouched", "Prüfung ×", "Prüfung ×"},
		{"ascii untouched", "Lernen", "Lernen"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairMojibake(tt.in); got != tt.want {
				t.Errorf("RepairMojibake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairMojibake_Idempotent(t *testing.T) {
	for _, in := range []string{"Ã·", "Ã—", "Ã,Ã·", "PrÃ¼fung"} {
		once := RepairMojibake(in)
		if twice := RepairMojibake(once); twice != once {
			t.Errorf("RepairMojibake not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
