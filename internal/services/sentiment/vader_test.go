package sentiment

import (
	"context"
	"errors"
	"testing"

	"SentiPull/internal/domain/models"
)

func TestVADERLabels(t *testing.T) {
	v := NewVADER(Config{})
	out, err := v.Classify(context.Background(), []string{
		"Great results, **excellent** growth and happy investors!",
		"Terrible losses, awful guidance, investors are angry.",
		"The meeting is on Tuesday.",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0].Label != models.LabelPositive || out[0].Score <= 0.05 {
		t.Fatalf("expected positive, got %+v", out[0])
	}
	if out[1].Label != models.LabelNegative || out[1].Score <= 0.05 {
		t.Fatalf("expected negative, got %+v", out[1])
	}
	if out[2].Label != models.LabelNeutral {
		t.Fatalf("expected neutral, got %+v", out[2])
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, _, err := New(Config{Type: "bert-large"}, nil); err == nil {
		t.Fatalf("expected error for unknown classifier")
	}
}

func TestNewVADERFromConfig(t *testing.T) {
	c, closeFn, err := New(Config{Type: TypeVADER}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()
	if c.Name() != TypeVADER {
		t.Fatalf("unexpected name %q", c.Name())
	}
}

func TestClassifyInBatchesRejectsShortResult(t *testing.T) {
	_, err := classifyInBatches(context.Background(), []string{"a", "b"}, 0, 0,
		func(context.Context, []string) ([]models.Classification, error) {
			return []models.Classification{{Label: "positive", Score: 1}}, nil
		})
	if err == nil {
		t.Fatalf("expected mismatch error")
	}

	boom := errors.New("boom")
	_, err = classifyInBatches(context.Background(), []string{"a"}, 0, 0,
		func(context.Context, []string) ([]models.Classification, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
