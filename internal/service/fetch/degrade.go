// Package fetch holds the failure policy shared by news providers.
package fetch

import (
	"context"
	"errors"
	"time"

	drepo "SentiPull/internal/domain/repository"
	"SentiPull/pkg/config"
	applogger "SentiPull/pkg/logger"
)

// Degrade decides what a failed news fetch returns. A missing credential or a
// cancelled context is returned unchanged; anything else is logged, counted and
// swallowed so the day proceeds with no articles.
func Degrade(ctx context.Context, err error, l *applogger.Logger, m drepo.Metrics, source, symbol string, day time.Time) error {
	if errors.Is(err, config.ErrMissingCredential) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	l.Warn("news fetch failed, treating day as empty",
		applogger.String("source", source),
		applogger.String("symbol", symbol),
		applogger.Date("day", day),
		applogger.Error(err),
	)
	if m != nil {
		m.RecordFetchError(source)
	}
	return nil
}
