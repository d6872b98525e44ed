package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"velvet_back_end/internal/models"
)

type fakeMailer struct {
	subjects []string
	bodies   []string
	err      error
}

func (f *fakeMailer) Send(subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

func lowStock(products ...models.Product) LowStockSource {
	return func() ([]models.Product, error) {
		return products, nil
	}
}

func TestScanSendsAlertForLowProducts(t *testing.T) {
	mailer := &fakeMailer{}
	m := New(lowStock(
		models.Product{Name: "Hoodie", StockLevel: 3, ReorderThreshold: 15},
		models.Product{Name: "Mug", StockLevel: 12, ReorderThreshold: 40},
	), mailer, time.Hour)

	m.scan()

	if len(mailer.subjects) != 1 {
		t.Fatalf("%d email(s) envoyé(s), attendu 1", len(mailer.subjects))
	}
	if mailer.subjects[0] != "Low Stock Alert 🚨" {
		t.Errorf("sujet = %q", mailer.subjects[0])
	}

	body := mailer.bodies[0]
	for _, line := range []string{
		"- Hoodie: 3 (Threshold: 15)",
		"- Mug: 12 (Threshold: 40)",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("corps sans la ligne %q:\n%s", line, body)
		}
	}
}

func TestScanSkipsMailWhenNothingIsLow(t *testing.T) {
	mailer := &fakeMailer{}
	m := New(lowStock(), mailer, time.Hour)

	m.scan()

	if len(mailer.subjects) != 0 {
		t.Errorf("%d email(s) envoyé(s) alors que rien n'est sous le seuil", len(mailer.subjects))
	}
}

func TestScanSwallowsSourceError(t *testing.T) {
	mailer := &fakeMailer{}
	m := New(func() ([]models.Product, error) {
		return nil, errors.New("scylla down")
	}, mailer, time.Hour)

	m.scan() // ne doit pas paniquer

	if len(mailer.subjects) != 0 {
		t.Errorf("un email a été envoyé malgré l'erreur de lecture")
	}
}

func TestRunScansImmediatelyThenStops(t *testing.T) {
	mailer := &fakeMailer{}
	scanned := make(chan struct{}, 1)
	m := New(func() ([]models.Product, error) {
		select {
		case scanned <- struct{}{}:
		default:
		}
		return nil, nil
	}, mailer, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-scanned:
	case <-time.After(2 * time.Second):
		t.Fatal("aucun scan immédiat au démarrage")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run ne s'arrête pas à l'annulation du contexte")
	}
}
