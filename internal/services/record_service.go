// Package services orchestrates record writes across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"trackmyfin/internal/amqp"
	"trackmyfin/internal/core"
	"trackmyfin/internal/storage"
)

// RecordService validates and persists records, then publishes a change
// event. Events are best-effort: a dead broker never fails a write that
// already landed in SQLite.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *RecordService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, "transaction", "created", saved.ID, saved.UserID)
	return saved, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	s.publishEvent(ctx, "transaction", "updated", t.ID, t.UserID)
	return nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, "transaction", "deleted", id, userID)
	return nil
}

func (s *RecordService) CreateSalary(ctx context.Context, sal core.Salary) (core.Salary, error) {
	if err := sal.Validate(); err != nil {
		return core.Salary{}, err
	}

	saved, err := s.storage.CreateSalary(ctx, sal)
	if err != nil {
		return core.Salary{}, fmt.Errorf("save salary: %w", err)
	}

	s.publishEvent(ctx, "salary", "created", saved.ID, saved.UserID)
	return saved, nil
}

func (s *RecordService) DeleteSalary(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteSalary(ctx, userID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, "salary", "deleted", id, userID)
	return nil
}

func (s *RecordService) publishEvent(ctx context.Context, entity, action string, recordID, userID int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping record event",
			"entity", entity, "action", action)
		return
	}

	msg := amqp.NewRecordEventMessage(entity, action, recordID, userID)
	if err := s.amqpClient.PublishRecordEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"entity", entity,
			"action", action,
			"record_id", recordID,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
