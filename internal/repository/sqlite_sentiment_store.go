package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	_ "modernc.org/sqlite"
)

// SQLiteSentimentStore implements SentimentStore on an embedded SQLite file.
// Dates are stored as YYYY-MM-DD text; saving an existing key overwrites it.
type SQLiteSentimentStore struct {
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.SentimentStore = (*SQLiteSentimentStore)(nil)

// NewSQLiteSentimentStore opens path. ":memory:" gives a private in-memory database.
func NewSQLiteSentimentStore(path string, l *applogger.Logger) (*SQLiteSentimentStore, error) {
	if l == nil {
		l = applogger.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)
	return &SQLiteSentimentStore{db: db, l: l}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_sentiment (
        symbol        TEXT NOT NULL,
        source        TEXT NOT NULL,
        date          TEXT NOT NULL,
        mean          REAL,
        std           REAL,
        article_count INTEGER NOT NULL,
        updated_at    TEXT NOT NULL,
        PRIMARY KEY (symbol, source, date)
    )`,
	`CREATE TABLE IF NOT EXISTS merged_sentiment (
        symbol                     TEXT NOT NULL,
        date                       TEXT NOT NULL,
        mean_a                     REAL,
        std_a                      REAL,
        count_a                    INTEGER NOT NULL,
        mean_b                     REAL,
        std_b                      REAL,
        count_b                    INTEGER NOT NULL,
        sentiment_avg              REAL,
        article_count_avg          REAL NOT NULL,
        std_avg                    REAL,
        sentiment_disagreement     REAL,
        sentiment_disagreement_pct REAL,
        updated_at                 TEXT NOT NULL,
        PRIMARY KEY (symbol, date)
    )`,
	`CREATE TABLE IF NOT EXISTS insider_scores (
        symbol       TEXT NOT NULL,
        from_date    TEXT NOT NULL,
        to_date      TEXT NOT NULL,
        score        REAL NOT NULL,
        buy_shares   REAL NOT NULL,
        sell_shares  REAL NOT NULL,
        transactions INTEGER NOT NULL,
        updated_at   TEXT NOT NULL,
        PRIMARY KEY (symbol, from_date, to_date)
    )`,
}

func (s *SQLiteSentimentStore) Init(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteSentimentStore) inTx(ctx context.Context, query string, n int, args func(i int) []any) error {
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
			return fmt.Errorf("exec row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteSentimentStore) SaveDaily(ctx context.Context, symbol, source string, series models.DailySentimentSeries) error {
	const q = `
        INSERT INTO daily_sentiment (symbol, source, date, mean, std, article_count, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (symbol, source, date) DO UPDATE SET
            mean = excluded.mean,
            std = excluded.std,
            article_count = excluded.article_count,
            updated_at = excluded.updated_at`
	now := stamp()
	err := s.inTx(ctx, q, len(series), func(i int) []any {
		r := series[i]
		return []any{symbol, source, r.Date.Format(util.DateLayout), nullable(r.Mean), nullable(r.Std), r.ArticleCount, now}
	})
	if err != nil {
		s.l.Error("sqlite save_daily error", applogger.String("symbol", symbol), applogger.String("source", source), applogger.Error(err))
		return fmt.Errorf("save daily: %w", err)
	}
	return nil
}

func (s *SQLiteSentimentStore) SaveMerged(ctx context.Context, symbol string, rows []models.MergedSentimentRecord) error {
	const q = `
        INSERT INTO merged_sentiment (symbol, date, mean_a, std_a, count_a, mean_b, std_b, count_b,
            sentiment_avg, article_count_avg, std_avg, sentiment_disagreement, sentiment_disagreement_pct, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (symbol, date) DO UPDATE SET
            mean_a = excluded.mean_a,
            std_a = excluded.std_a,
            count_a = excluded.count_a,
            mean_b = excluded.mean_b,
            std_b = excluded.std_b,
            count_b = excluded.count_b,
            sentiment_avg = excluded.sentiment_avg,
            article_count_avg = excluded.article_count_avg,
            std_avg = excluded.std_avg,
            sentiment_disagreement = excluded.sentiment_disagreement,
            sentiment_disagreement_pct = excluded.sentiment_disagreement_pct,
            updated_at = excluded.updated_at`
	now := stamp()
	err := s.inTx(ctx, q, len(rows), func(i int) []any {
		r := rows[i]
		return []any{
			symbol, r.Date.Format(util.DateLayout),
			nullable(r.MeanA), nullable(r.StdA), r.CountA,
			nullable(r.MeanB), nullable(r.StdB), r.CountB,
			nullable(r.SentimentAvg), r.ArticleCountAvg, nullable(r.StdAvg),
			nullable(r.SentimentDisagreement), nullable(r.SentimentDisagreementPct),
			now,
		}
	})
	if err != nil {
		return fmt.Errorf("save merged: %w", err)
	}
	return nil
}

func (s *SQLiteSentimentStore) SaveInsiderScore(ctx context.Context, score *models.InsiderScore) error {
	if score == nil {
		return nil
	}
	const q = `
        INSERT INTO insider_scores (symbol, from_date, to_date, score, buy_shares, sell_shares, transactions, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (symbol, from_date, to_date) DO UPDATE SET
            score = excluded.score,
            buy_shares = excluded.buy_shares,
            sell_shares = excluded.sell_shares,
            transactions = excluded.transactions,
            updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, q,
		score.Symbol, score.From.Format(util.DateLayout), score.To.Format(util.DateLayout),
		score.Score, score.BuyShares, score.SellShares, score.Transactions, stamp())
	if err != nil {
		return fmt.Errorf("save insider score: %w", err)
	}
	return nil
}

func (s *SQLiteSentimentStore) QueryDaily(ctx context.Context, symbol, source string, from, to time.Time) (models.DailySentimentSeries, error) {
	const q = `
        SELECT date, mean, std, article_count
        FROM daily_sentiment
        WHERE symbol = ? AND source = ? AND date >= ? AND date <= ?
        ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, symbol, source, from.Format(util.DateLayout), to.Format(util.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query daily: %w", err)
	}
	defer rows.Close()

	out := make(models.DailySentimentSeries, 0, 64)
	for rows.Next() {
		var (
			r         models.DailySentimentRecord
			date      string
			mean, std sql.NullFloat64
		)
		if err := rows.Scan(&date, &mean, &std, &r.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan daily: %w", err)
		}
		if r.Date, err = util.ParseDate(date); err != nil {
			return nil, err
		}
		r.Mean, r.Std = orNaN(mean), orNaN(std)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteSentimentStore) QueryMerged(ctx context.Context, symbol string, from, to time.Time) ([]models.MergedSentimentRecord, error) {
	const q = `
        SELECT date, mean_a, std_a, count_a, mean_b, std_b, count_b,
               sentiment_avg, article_count_avg, std_avg, sentiment_disagreement, sentiment_disagreement_pct
        FROM merged_sentiment
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, symbol, from.Format(util.DateLayout), to.Format(util.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query merged: %w", err)
	}
	defer rows.Close()

	out := make([]models.MergedSentimentRecord, 0, 64)
	for rows.Next() {
		var (
			r                               models.MergedSentimentRecord
			date                            string
			meanA, stdA, meanB, stdB        sql.NullFloat64
			avg, stdAvg, disagree, disagPct sql.NullFloat64
		)
		if err := rows.Scan(&date, &meanA, &stdA, &r.CountA, &meanB, &stdB, &r.CountB,
			&avg, &r.ArticleCountAvg, &stdAvg, &disagree, &disagPct); err != nil {
			return nil, fmt.Errorf("scan merged: %w", err)
		}
		if r.Date, err = util.ParseDate(date); err != nil {
			return nil, err
		}
		r.MeanA, r.StdA = orNaN(meanA), orNaN(stdA)
		r.MeanB, r.StdB = orNaN(meanB), orNaN(stdB)
		r.SentimentAvg, r.StdAvg = orNaN(avg), orNaN(stdAvg)
		r.SentimentDisagreement, r.SentimentDisagreementPct = orNaN(disagree), orNaN(disagPct)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteSentimentStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteSentimentStore) Close() error {
	return s.db.Close()
}
