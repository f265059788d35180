//go:build !ORT

package sentiment

import (
	"context"
	"errors"

	"SentiPull/internal/domain/models"
	applogger "SentiPull/pkg/logger"
)

// ErrONNXUnavailable is returned when the binary was built without the ORT tag.
var ErrONNXUnavailable = errors.New("onnx classifier requires building with -tags ORT")

type ONNX struct{}

func NewONNX(Config, *applogger.Logger) (*ONNX, error) { return nil, ErrONNXUnavailable }

func (o *ONNX) Name() string { return TypeONNX }

func (o *ONNX) Classify(context.Context, []string) ([]models.Classification, error) {
	return nil, ErrONNXUnavailable
}

func (o *ONNX) Close() {}
