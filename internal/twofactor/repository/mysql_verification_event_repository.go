package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/database"
	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// MySQLVerificationEventRepository implements VerificationEvent persistence
// for MySQL. Uses BINARY(16) for UUID storage with transaction support via
// database.GetTx().
type MySQLVerificationEventRepository struct {
	db *sql.DB
}

// NewMySQLVerificationEventRepository creates a new MySQL VerificationEvent repository.
func NewMySQLVerificationEventRepository(db *sql.DB) *MySQLVerificationEventRepository {
	return &MySQLVerificationEventRepository{db: db}
}

// Create inserts a new VerificationEvent into the MySQL database using
// BINARY(16) for UUIDs. Handles nil metadata as database NULL. Reset events
// carry an empty operation slug.
func (m *MySQLVerificationEventRepository) Create(
	ctx context.Context,
	event *twofactorDomain.VerificationEvent,
) error {
	querier := database.GetTx(ctx, m.db)

	var metadataJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal verification event metadata")
		}
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal verification event id")
	}

	requestID, err := event.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal verification event request_id")
	}

	query := `INSERT INTO verification_events
			  (id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
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
func (m *MySQLVerificationEventRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*twofactorDomain.VerificationEvent, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal verification event id")
	}

	query := `SELECT id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at
			  FROM verification_events
			  WHERE id = ?`

	row := querier.QueryRowContext(ctx, query, idBinary)

	event, err := scanMySQLVerificationEvent(row.Scan)
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
// empty slice if no events match. UUIDs are stored as BINARY(16) and must be
// unmarshaled.
func (m *MySQLVerificationEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*twofactorDomain.VerificationEvent, error) {
	querier := database.GetTx(ctx, m.db)

	// Build dynamic WHERE clause based on provided filters
	var conditions []string
	var args []interface{}

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}

	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, request_id, principal_id, session_id, operation, event_type, metadata, signature, created_at
			  FROM verification_events`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
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
		event, err := scanMySQLVerificationEvent(rows.Scan)
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
func (m *MySQLVerificationEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM verification_events WHERE created_at < ?`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count verification events")
		}
		return count, nil
	}

	query := `DELETE FROM verification_events WHERE created_at < ?`
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

// scanMySQLVerificationEvent scans one row into a domain event, unmarshaling
// BINARY(16) UUID columns. The scan argument abstracts over *sql.Row and *sql.Rows.
func scanMySQLVerificationEvent(scan func(dest ...any) error) (*twofactorDomain.VerificationEvent, error) {
	var event twofactorDomain.VerificationEvent
	var idBinary, requestIDBinary []byte
	var operation, eventType string
	var metadataJSON []byte

	err := scan(
		&idBinary,
		&requestIDBinary,
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

	if err := event.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal verification event id")
	}

	if err := event.RequestID.UnmarshalBinary(requestIDBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal verification event request_id")
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
