// Package store provides durable storage for submitted candidate records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ashureev/talentscout/internal/domain"
)

// ErrDuplicateSubmission is returned when a session has already been stored.
var ErrDuplicateSubmission = errors.New("session already submitted")

// Submission is one completed session handed to a Sink.
type Submission struct {
	SessionID string
	Record    domain.CandidateRecord
}

// Sink appends candidate records to durable storage.
type Sink interface {
	// Append stores one record. Previously stored records are never altered.
	Append(ctx context.Context, sub Submission) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Repository is a Sink that can also list what it stored.
type Repository interface {
	Sink

	// List returns every stored record in submission order.
	List(ctx context.Context) ([]domain.CandidateRecord, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// WriteJSON writes records as one indented JSON array, the candidates.json format.
func WriteJSON(w io.Writer, records []domain.CandidateRecord) error {
	if records == nil {
		records = []domain.CandidateRecord{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	return nil
}
