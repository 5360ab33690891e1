package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"trackmyfin/internal/core"
)

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, kind, description, category, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.String(), string(t.Kind), t.Description, t.Category, formatTime(t.OccurredAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount", t.Amount.String())

	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, kind = ?, description = ?, category = ?, occurred_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Amount.String(), string(t.Kind), t.Description, t.Category, formatTime(t.OccurredAt),
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, kind, description, category, occurred_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the user's full transaction set, newest first.
// The report engine does not depend on the ordering.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, kind, description, category, occurred_at
		 FROM transactions WHERE user_id = ? ORDER BY occurred_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) CreateSalary(ctx context.Context, s core.Salary) (core.Salary, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO salaries (user_id, amount, description, received_at)
		 VALUES (?, ?, ?, ?)`,
		s.UserID, s.Amount.String(), s.Description, formatTime(s.ReceivedAt))
	if err != nil {
		return core.Salary{}, fmt.Errorf("create salary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Salary{}, fmt.Errorf("salary id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Salary saved",
		"id", s.ID,
		"user_id", s.UserID,
		"amount", s.Amount.String())

	return s, nil
}

func (r *SQLiteRepository) DeleteSalary(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM salaries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete salary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete salary rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListSalaries(ctx context.Context, userID int64) ([]core.Salary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, description, received_at
		 FROM salaries WHERE user_id = ? ORDER BY received_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	defer rows.Close()

	var sals []core.Salary
	for rows.Next() {
		var (
			s          core.Salary
			amountStr  string
			receivedAt string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &amountStr, &s.Description, &receivedAt); err != nil {
			return nil, fmt.Errorf("list salaries: %w", err)
		}
		if s.Amount, err = parseStoredAmount("salary", s.ID, amountStr); err != nil {
			return nil, err
		}
		if s.ReceivedAt, err = parseStoredTime("salary", s.ID, receivedAt); err != nil {
			return nil, err
		}
		sals = append(sals, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	return sals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		amountStr  string
		kind       string
		occurredAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &amountStr, &kind, &t.Description, &t.Category, &occurredAt); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)

	var err error
	if t.Amount, err = parseStoredAmount("transaction", t.ID, amountStr); err != nil {
		return core.Transaction{}, err
	}
	if t.OccurredAt, err = parseStoredTime("transaction", t.ID, occurredAt); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
