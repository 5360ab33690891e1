// Package worker turns record events from the queue into audit log rows
// and, when configured, spreadsheet exports.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trackmyfin/internal/amqp"
	"trackmyfin/internal/export"
	"trackmyfin/internal/storage"
)

// AuditWorker consumes record events. Every event becomes an audit row;
// created records are additionally mirrored to Google Sheets when an
// exporter is configured.
type AuditWorker struct {
	storage  *storage.SQLiteRepository
	exporter *export.SheetsExporter
}

func NewAuditWorker(storage *storage.SQLiteRepository, exporter *export.SheetsExporter) *AuditWorker {
	return &AuditWorker{
		storage:  storage,
		exporter: exporter,
	}
}

// HandleRecordEvent processes a single event off the queue. Returning an
// error requeues the delivery, so only transient failures bubble up.
func (w *AuditWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error {
	slog.InfoContext(ctx, "Processing record event",
		"entity", msg.Entity,
		"action", msg.Action,
		"record_id", msg.RecordID,
		"user_id", msg.UserID)

	if _, err := w.storage.AppendAudit(ctx, storage.AuditEntry{
		Entity:     msg.Entity,
		Action:     msg.Action,
		RecordID:   msg.RecordID,
		UserID:     msg.UserID,
		OccurredAt: msg.OccurredAt,
	}); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	if msg.Action == "created" {
		if err := w.export(ctx, msg); err != nil {
			// The record may have been deleted between publish and
			// consume. That is not a failure worth requeueing.
			if errors.Is(err, storage.ErrNotFound) {
				slog.WarnContext(ctx, "Record gone before export, skipping",
					"entity", msg.Entity,
					"record_id", msg.RecordID)
				return nil
			}
			return err
		}
	}

	return nil
}

func (w *AuditWorker) export(ctx context.Context, msg *amqp.RecordEventMessage) error {
	if w.exporter == nil {
		return nil
	}

	switch msg.Entity {
	case "transaction":
		t, err := w.storage.GetTransaction(ctx, msg.UserID, msg.RecordID)
		if err != nil {
			return fmt.Errorf("load transaction %d: %w", msg.RecordID, err)
		}
		if err := w.exporter.AppendTransaction(ctx, t); err != nil {
			return fmt.Errorf("export transaction %d: %w", msg.RecordID, err)
		}
	case "salary":
		sals, err := w.storage.ListSalaries(ctx, msg.UserID)
		if err != nil {
			return fmt.Errorf("load salaries for user %d: %w", msg.UserID, err)
		}
		for _, s := range sals {
			if s.ID != msg.RecordID {
				continue
			}
			if err := w.exporter.AppendSalary(ctx, s); err != nil {
				return fmt.Errorf("export salary %d: %w", msg.RecordID, err)
			}
			return nil
		}
		return fmt.Errorf("load salary %d: %w", msg.RecordID, storage.ErrNotFound)
	default:
		slog.WarnContext(ctx, "Unknown entity in record event, skipping export",
			"entity", msg.Entity)
	}
	return nil
}
