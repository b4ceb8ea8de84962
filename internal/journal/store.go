package journal

import (
	"context"
	"time"

	"crt_bot/internal/models"
	"crt_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Store — append-only журнал сделок в Postgres. Те же колонки, что были
// в Excel-журнале, плюс события жизненного цикла (BREAKEVEN).
type Store struct {
	tx db.TxManager
}

func NewStore(tx db.TxManager) *Store {
	return &Store{tx: tx}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS trade_journal (
    id         BIGSERIAL PRIMARY KEY,
    ticket     BIGINT NOT NULL,
    at         TIMESTAMPTZ NOT NULL,
    symbol     TEXT NOT NULL,
    direction  TEXT NOT NULL,
    entry      DOUBLE PRECISION NOT NULL,
    stop_loss  DOUBLE PRECISION NOT NULL,
    take_profit DOUBLE PRECISION NOT NULL,
    lot        DOUBLE PRECISION NOT NULL,
    rr1        DOUBLE PRECISION NOT NULL,
    rr2        DOUBLE PRECISION NOT NULL,
    status     TEXT NOT NULL,
    exit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
    profit     DOUBLE PRECISION NOT NULL DEFAULT 0,
    comment    TEXT NOT NULL DEFAULT ''
)`

// Migrate создаёт таблицу журнала, если её ещё нет.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.tx.Conn().Exec(ctx, createTableSQL)
	return errors.Wrap(err, "create trade_journal")
}

// Open пишет запись об открытии ордера.
func (s *Store) Open(ctx context.Context, rec models.TradeRecord) error {
	return s.append(ctx, rec)
}

// Event пишет событие жизненного цикла по тикету (BREAKEVEN, CLOSED).
func (s *Store) Event(ctx context.Context, ticket int64, status string, comment string) error {
	rec := models.TradeRecord{
		Ticket:  ticket,
		At:      time.Now().UTC(),
		Status:  status,
		Comment: comment,
	}
	return s.append(ctx, rec)
}

func (s *Store) append(ctx context.Context, rec models.TradeRecord) error {
	err := s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO trade_journal
			(ticket, at, symbol, direction, entry, stop_loss, take_profit, lot,
			 rr1, rr2, status, exit_price, profit, comment)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			rec.Ticket, rec.At, rec.Symbol, string(rec.Direction),
			rec.Entry, rec.StopLoss, rec.TakeProfit, rec.Lot,
			rec.RR1, rec.RR2, rec.Status, rec.ExitPrice, rec.Profit, rec.Comment,
		)
		return err
	})
	return errors.Wrap(err, "append trade_journal")
}

// ListFilter — выборка для экспорта.
type ListFilter struct {
	Symbol string
	Status string
	Since  time.Time
}

// List отдаёт записи журнала от старых к новым.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.TradeRecord, error) {
	rows, err := s.tx.Conn().Query(ctx, `
		SELECT ticket, at, symbol, direction, entry, stop_loss, take_profit, lot,
		       rr1, rr2, status, exit_price, profit, comment
		FROM trade_journal
		WHERE ($1 = '' OR symbol = $1)
		  AND ($2 = '' OR status = $2)
		  AND at >= $3
		ORDER BY at, id`,
		f.Symbol, f.Status, f.Since,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query trade_journal")
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		var rec models.TradeRecord
		var dir string
		if err := rows.Scan(
			&rec.Ticket, &rec.At, &rec.Symbol, &dir,
			&rec.Entry, &rec.StopLoss, &rec.TakeProfit, &rec.Lot,
			&rec.RR1, &rec.RR2, &rec.Status, &rec.ExitPrice, &rec.Profit, &rec.Comment,
		); err != nil {
			return nil, errors.Wrap(err, "scan trade_journal")
		}
		rec.Direction = models.Direction(dir)
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate trade_journal")
}
