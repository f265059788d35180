package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	pkgch "SentiPull/pkg/clickhouse"
	applogger "SentiPull/pkg/logger"
)

// CHSentimentStore implements SentimentStore backed by ClickHouse. Rows are
// deduplicated by ReplacingMergeTree on their key and read with FINAL.
type CHSentimentStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.SentimentStore = (*CHSentimentStore)(nil)

func NewCHSentimentStore(ch *pkgch.Client, l *applogger.Logger) *CHSentimentStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHSentimentStore{ch: ch, db: ch.DB(), l: l}
}

func (s *CHSentimentStore) table(name string) string {
	return s.ch.Database() + "." + name
}

func (s *CHSentimentStore) Init(ctx context.Context) error {
	return s.ch.Exec(ctx,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol        LowCardinality(String),
            source        LowCardinality(String),
            date          Date,
            mean          Nullable(Float64),
            std           Nullable(Float64),
            article_count UInt32,
            updated_at    DateTime64(3)
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, source, date)`, s.table("daily_sentiment")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol                     LowCardinality(String),
            date                       Date,
            mean_a                     Nullable(Float64),
            std_a                      Nullable(Float64),
            count_a                    UInt32,
            mean_b                     Nullable(Float64),
            std_b                      Nullable(Float64),
            count_b                    UInt32,
            sentiment_avg              Nullable(Float64),
            article_count_avg          Float64,
            std_avg                    Nullable(Float64),
            sentiment_disagreement     Nullable(Float64),
            sentiment_disagreement_pct Nullable(Float64),
            updated_at                 DateTime64(3)
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, date)`, s.table("merged_sentiment")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol       LowCardinality(String),
            from_date    Date,
            to_date      Date,
            score        Float64,
            buy_shares   Float64,
            sell_shares  Float64,
            transactions UInt32,
            updated_at   DateTime64(3)
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, from_date, to_date)`, s.table("insider_scores")),
	)
}

// insertBatch runs rows through one prepared INSERT inside a transaction, which
// clickhouse-go sends as a single block.
func (s *CHSentimentStore) insertBatch(ctx context.Context, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *CHSentimentStore) SaveDaily(ctx context.Context, symbol, source string, series models.DailySentimentSeries) error {
	start := time.Now()
	now := start.UTC()
	q := fmt.Sprintf("INSERT INTO %s (symbol, source, date, mean, std, article_count, updated_at)", s.table("daily_sentiment"))
	err := s.insertBatch(ctx, q, len(series), func(i int) []any {
		r := series[i]
		return []any{symbol, source, r.Date, nullable(r.Mean), nullable(r.Std), uint32(r.ArticleCount), now}
	})
	if err != nil {
		s.l.Error("clickhouse save_daily error",
			applogger.String("symbol", symbol),
			applogger.String("source", source),
			applogger.Error(err),
		)
		return fmt.Errorf("save daily: %w", err)
	}
	s.l.Debug("clickhouse save_daily ok",
		applogger.String("symbol", symbol),
		applogger.String("source", source),
		applogger.Int("rows", len(series)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHSentimentStore) SaveMerged(ctx context.Context, symbol string, rows []models.MergedSentimentRecord) error {
	now := time.Now().UTC()
	q := fmt.Sprintf(`INSERT INTO %s (symbol, date, mean_a, std_a, count_a, mean_b, std_b, count_b,
        sentiment_avg, article_count_avg, std_avg, sentiment_disagreement, sentiment_disagreement_pct, updated_at)`,
		s.table("merged_sentiment"))
	err := s.insertBatch(ctx, q, len(rows), func(i int) []any {
		r := rows[i]
		return []any{
			symbol, r.Date,
			nullable(r.MeanA), nullable(r.StdA), uint32(r.CountA),
			nullable(r.MeanB), nullable(r.StdB), uint32(r.CountB),
			nullable(r.SentimentAvg), r.ArticleCountAvg, nullable(r.StdAvg),
			nullable(r.SentimentDisagreement), nullable(r.SentimentDisagreementPct),
			now,
		}
	})
	if err != nil {
		s.l.Error("clickhouse save_merged error", applogger.String("symbol", symbol), applogger.Error(err))
		return fmt.Errorf("save merged: %w", err)
	}
	return nil
}

func (s *CHSentimentStore) SaveInsiderScore(ctx context.Context, score *models.InsiderScore) error {
	if score == nil {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, from_date, to_date, score, buy_shares, sell_shares, transactions, updated_at)", s.table("insider_scores"))
	err := s.insertBatch(ctx, q, 1, func(int) []any {
		return []any{score.Symbol, score.From, score.To, score.Score, score.BuyShares, score.SellShares, uint32(score.Transactions), time.Now().UTC()}
	})
	if err != nil {
		return fmt.Errorf("save insider score: %w", err)
	}
	return nil
}

func (s *CHSentimentStore) QueryDaily(ctx context.Context, symbol, source string, from, to time.Time) (models.DailySentimentSeries, error) {
	q := fmt.Sprintf(`
        SELECT date, mean, std, article_count
        FROM %s FINAL
        WHERE symbol = ? AND source = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, s.table("daily_sentiment"))
	rows, err := s.db.QueryContext(ctx, q, symbol, source, from, to)
	if err != nil {
		s.l.Error("clickhouse query_daily error",
			applogger.String("symbol", symbol),
			applogger.String("source", source),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query daily: %w", err)
	}
	defer rows.Close()

	out := make(models.DailySentimentSeries, 0, 64)
	for rows.Next() {
		var (
			r         models.DailySentimentRecord
			mean, std sql.NullFloat64
			count     uint32
		)
		if err := rows.Scan(&r.Date, &mean, &std, &count); err != nil {
			return nil, fmt.Errorf("scan daily: %w", err)
		}
		r.Date = r.Date.UTC()
		r.Mean, r.Std, r.ArticleCount = orNaN(mean), orNaN(std), int(count)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSentimentStore) QueryMerged(ctx context.Context, symbol string, from, to time.Time) ([]models.MergedSentimentRecord, error) {
	q := fmt.Sprintf(`
        SELECT date, mean_a, std_a, count_a, mean_b, std_b, count_b,
               sentiment_avg, article_count_avg, std_avg, sentiment_disagreement, sentiment_disagreement_pct
        FROM %s FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, s.table("merged_sentiment"))
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.l.Error("clickhouse query_merged error", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, fmt.Errorf("query merged: %w", err)
	}
	defer rows.Close()

	out := make([]models.MergedSentimentRecord, 0, 64)
	for rows.Next() {
		var (
			r                               models.MergedSentimentRecord
			meanA, stdA, meanB, stdB        sql.NullFloat64
			avg, stdAvg, disagree, disagPct sql.NullFloat64
			countA, countB                  uint32
		)
		if err := rows.Scan(&r.Date, &meanA, &stdA, &countA, &meanB, &stdB, &countB,
			&avg, &r.ArticleCountAvg, &stdAvg, &disagree, &disagPct); err != nil {
			return nil, fmt.Errorf("scan merged: %w", err)
		}
		r.Date = r.Date.UTC()
		r.MeanA, r.StdA, r.CountA = orNaN(meanA), orNaN(stdA), int(countA)
		r.MeanB, r.StdB, r.CountB = orNaN(meanB), orNaN(stdB), int(countB)
		r.SentimentAvg, r.StdAvg = orNaN(avg), orNaN(stdAvg)
		r.SentimentDisagreement, r.SentimentDisagreementPct = orNaN(disagree), orNaN(disagPct)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSentimentStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHSentimentStore) Close() error {
	return s.ch.Close()
}
