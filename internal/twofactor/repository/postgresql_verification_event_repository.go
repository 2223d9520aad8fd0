// Package repository provides SQL persistence for the verification event journal.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/database"
	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// PostgreSQLVerificationEventRepository implements VerificationEvent persistence
// for PostgreSQL. Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLVerificationEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLVerificationEventRepository creates a new PostgreSQL VerificationEvent repository.
func NewPostgreSQLVerificationEventRepository(db *sql.DB) *PostgreSQLVerificationEventRepository {
	return &PostgreSQLVerificationEventRepository{db: db}
}

// Create inserts a new VerificationEvent into the PostgreSQL database. Uses
// transaction support via database.GetTx(). Handles nil metadata as database
// NULL. Reset events carry an empty operation slug.
func (p *PostgreSQLVerificationEventRepository) Create(
	ctx context.Context,
	event *twofactorDomain.VerificationEvent,
) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal verification event metadata")
		}
	}

	query := `INSERT INTO verification_events
			  (id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.RequestID,
		event.PrincipalID,
		event.SessionID,
		string(event.Operation),
		string(event.EventType),
		metadataJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create verification event")
	}

	return nil
}

// Get retrieves a verification event by ID. Returns ErrEventNotFound if no
// event with the given ID exists.
func (p *PostgreSQLVerificationEventRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*twofactorDomain.VerificationEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at
			  FROM verification_events
			  WHERE id = $1`

	row := querier.QueryRowContext(ctx, query, id)

	event, err := scanPostgreSQLVerificationEvent(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, twofactorDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get verification event")
	}

	return event, nil
}

// List retrieves verification events ordered by created_at descending (newest
// first) with pagination and optional time-based filtering. Both boundaries
// are inclusive (>= and <=). All timestamps are expected in UTC. Returns an
// empty slice if no events match.
func (p *PostgreSQLVerificationEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*twofactorDomain.VerificationEvent, error) {
	querier := database.GetTx(ctx, p.db)

	// Build dynamic WHERE clause based on provided filters
	var conditions []string
	var args []interface{}

	if createdAtFrom != nil {
		args = append(args, *createdAtFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if createdAtTo != nil {
		args = append(args, *createdAtTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at
			  FROM verification_events`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verification events")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	events := make([]*twofactorDomain.VerificationEvent, 0)
	for rows.Next() {
		event, err := scanPostgreSQLVerificationEvent(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan verification event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate verification events")
	}

	return events, nil
}

// DeleteOlderThan removes verification events created before the given
// timestamp. When dryRun is true, returns the count of matching events
// without deleting them.
func (p *PostgreSQLVerificationEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM verification_events WHERE created_at < $1`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count verification events")
		}
		return count, nil
	}

	query := `DELETE FROM verification_events WHERE created_at < $1`
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete verification events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get deleted row count")
	}

	return count, nil
}

// scanPostgreSQLVerificationEvent scans one row into a domain event. The scan
// argument abstracts over *sql.Row and *sql.Rows.
func scanPostgreSQLVerificationEvent(scan func(dest ...any) error) (*twofactorDomain.VerificationEvent, error) {
	var event twofactorDomain.VerificationEvent
	var operation, eventType string
	var metadataJSON []byte

	err := scan(
		&event.ID,
		&event.RequestID,
		&event.PrincipalID,
		&event.SessionID,
		&operation,
		&eventType,
		&metadataJSON,
		&event.Signature,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Operation = twofactorDomain.OperationKind(operation)
	event.EventType = twofactorDomain.EventType(eventType)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal verification event metadata")
		}
	}

	return &event, nil
}
