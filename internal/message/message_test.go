package message

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/anonyreport/internal/model"
)

// TestCatalog tests loading and rendering messages.
func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	t.Run("default language is Spanish", func(t *testing.T) {
		t.Parallel()

		l, err := catalog.Localizer("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := l.T(IDLocationMissing, nil); got != "Por favor completa la ubicación" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("English messages", func(t *testing.T) {
		t.Parallel()

		l, err := catalog.Localizer("en")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := l.T(IDSelectOption, nil); got != "Please select an option before continuing" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("server error keeps detail verbatim", func(t *testing.T) {
		t.Parallel()

		l, _ := catalog.Localizer("es")
		got := l.T(IDServerError, map[string]any{"Detail": "rate limited <b>"})
		if !strings.Contains(got, "rate limited <b>") {
			t.Errorf("detail not kept verbatim: %q", got)
		}
	})

	t.Run("unknown id renders as id", func(t *testing.T) {
		t.Parallel()

		l, _ := catalog.Localizer("es")
		if got := l.T("no-such-message", nil); got != "no-such-message" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("unsupported language", func(t *testing.T) {
		t.Parallel()

		if _, err := catalog.Localizer("fr"); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
		}
	})

	t.Run("every Spanish message exists in English", func(t *testing.T) {
		t.Parallel()

		es, _ := catalog.Localizer("es")
		en, _ := catalog.Localizer("en")
		ids := []string{
			IDSelectOption, IDPreparingSystem, IDConnectingServer, IDLocationMissing,
			IDConnectionError, IDSubmitting, IDSubmitted, IDAlreadyCompleted,
			IDLoading, IDHintNavigation, IDHintLocation, IDButtonSubmit,
			IDReadinessReady, IDReadinessDown,
		}
		for _, id := range ids {
			if es.T(id, nil) == id {
				t.Errorf("%s missing in Spanish", id)
			}
			if en.T(id, nil) == es.T(id, nil) {
				t.Errorf("%s not translated to English", id)
			}
		}
	})

	t.Run("clearing notice renders empty", func(t *testing.T) {
		t.Parallel()

		l, _ := catalog.Localizer("es")
		if got := l.Notice(model.ClearNotice()); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
		n := model.Notice{Level: model.NoticeInfo, MessageID: IDConnectingServer}
		if got := l.Notice(n); !strings.Contains(got, "Conectando") {
			t.Errorf("unexpected notice %q", got)
		}
	})
}
