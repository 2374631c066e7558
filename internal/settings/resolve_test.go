package settings

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		explicit   domain.Settings
		session    domain.Settings
		persistent domain.Settings
		want       domain.Settings
	}{
		{
			name:       "session beats persistent",
			session:    domain.Settings{"Operatoren": "+"},
			persistent: domain.Settings{"Operatoren": "×", "Klasse": "2"},
			want:       domain.Settings{"Operatoren": "+", "Klasse": "2"},
		},
		{
			name:       "explicit beats everything",
			explicit:   domain.Settings{"Modus": "Lernen"},
			session:    domain.Settings{"Modus": "Zahlenspiele"},
			persistent: domain.Settings{"Modus": "Erinnerung"},
			want:       domain.Settings{"Modus": "Lernen"},
		},
		{
			name:       "empty values fall through",
			explicit:   domain.Settings{"Klasse": ""},
			session:    domain.Settings{"Klasse": ""},
			persistent: domain.Settings{"Klasse": "4"},
			want:       domain.Settings{"Klasse": "4"},
		},
		{
			name:       "non standard keys ignored",
			session:    domain.Settings{"Name": "Lea"},
			persistent: domain.Settings{"Farbe": "blau"},
			want:       domain.Settings{},
		},
		{
			name: "all empty",
			want: domain.Settings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.explicit, tt.session, tt.persistent)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	in := domain.Settings{
		"Operatoren":    "x, /",
		"Schwierigkeit": "2",
		"Modus":         "3",
		"Klasse":        " 3 ",
	}

	got := Canonicalize(in)
	want := domain.Settings{
		"Operatoren":    "×,÷",
		"Schwierigkeit": "Mittel",
		"Modus":         "Lernen",
		"Klasse":        " 3 ",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Canonicalize() mismatch (-want +got):\n%s", diff)
	}
	if in["Operatoren"] != "x, /" {
		t.Error("Canonicalize() modified its input")
	}
}

func TestNewView(t *testing.T) {
	v := NewView(
		domain.Settings{"Operatoren": "1"},
		domain.Settings{"Operatoren": "×", "Schwierigkeit": "leicht"},
	)

	if v.Effective["Operatoren"] != "+" {
		t.Errorf("Effective Operatoren = %q, want +", v.Effective["Operatoren"])
	}
	if v.Effective["Schwierigkeit"] != "Leicht" {
		t.Errorf("Effective Schwierigkeit = %q, want Leicht", v.Effective["Schwierigkeit"])
	}
	if v.Session["Operatoren"] != "+" {
		t.Errorf("Session Operatoren = %q, want +", v.Session["Operatoren"])
	}
	if v.Persistent["Schwierigkeit"] != "Leicht" {
		t.Errorf("Persistent Schwierigkeit = %q, want Leicht", v.Persistent["Schwierigkeit"])
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(domain.Settings{"Klasse": "2"})

	saved, err := Apply(ctx, store, map[string]string{
		"Operatoren":    "Ã·, x",
		"Schwierigkeit": "schwer",
		"Zahlenauswahl": " bis 100 ",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := domain.Settings{
		"Klasse":        "2",
		"Operatoren":    "÷,×",
		"Schwierigkeit": "Schwer",
		"Zahlenauswahl": " bis 100 ",
	}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}

	loaded, _ := store.Load(ctx)
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("stored settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	v, err := Set(ctx, store, "Modus", "4")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v != "Abenteuer & Extras" {
		t.Errorf("Set() = %q, want %q", v, "Abenteuer & Extras")
	}
}
