package domain

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"Operatoren", KeyOperators, true},
		{"operatoren", KeyOperators, true},
		{" SCHWIERIGKEIT ", KeyDifficulty, true},
		{"name", KeyName, true},
		{"zahlenauswahl", KeyNumberRange, true},
		{"farbe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKey(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseKey(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKey_IsStandard(t *testing.T) {
	for _, k := range StandardKeys {
		if !k.IsStandard() {
			t.Errorf("%s should be a standard key", k)
		}
	}
	if KeyName.IsStandard() {
		t.Error("Name must not be a standard key")
	}
	if len(AllKeys) != len(StandardKeys)+1 {
		t.Errorf("len(AllKeys) = %d, want %d", len(AllKeys), len(StandardKeys)+1)
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range Operators {
		if !IsOperator(op) {
			t.Errorf("IsOperator(%q) = false", op)
		}
	}
	for _, s := range []string{"x", "*", "/", ":", "−", ""} {
		if IsOperator(s) {
			t.Errorf("IsOperator(%q) = true, want false", s)
		}
	}
}

func TestSettings(t *testing.T) {
	t.Run("Clone is independent", func(t *testing.T) {
		s := Settings{"Modus": "Lernen"}
		c := s.Clone()
		c["Modus"] = "Zahlenspiele"
		if s["Modus"] != "Lernen" {
			t.Error("Clone() shares storage with the original")
		}
	})

	t.Run("Clone of nil", func(t *testing.T) {
		var s Settings
		c := s.Clone()
		if c == nil {
			t.Fatal("Clone() of nil should return an empty map")
		}
		c.Set(KeyGrade, "3")
		if v, _ := c.Get(KeyGrade); v != "3" {
			t.Errorf("Get(Klasse) = %q, want 3", v)
		}
	})

	t.Run("Standard drops empty and foreign keys", func(t *testing.T) {
		s := Settings{"Operatoren": "+", "Modus": "", "Name": "Lea", "Farbe": "blau"}
		got := s.Standard()
		if len(got) != 1 || got["Operatoren"] != "+" {
			t.Errorf("Standard() = %v", got)
		}
	})
}
