package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pocketbase/dbx"
	"github.com/rs/zerolog"

	"github.com/tripagent/tripagent/internal/apperrors"
)

// Default connection parameters: foreign keys on, write lock taken at BEGIN
// so read-then-write transactions cannot interleave.
const defaultDSNParams = "_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"

type SQLiteStore struct {
	db  *dbx.DB
	log zerolog.Logger
}

func NewSQLiteStore(dataSourceName string, log zerolog.Logger) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite3", withDefaultParams(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection keeps access serialized.
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = Migrate(sqlDB, log); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: dbx.NewFromDB(sqlDB, "sqlite3"), log: log}, nil
}

func withDefaultParams(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + defaultDSNParams
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type conversationRow struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type messageRow struct {
	ID             int64          `db:"id"`
	ConversationID int64          `db:"conversation_id"`
	Role           sql.NullString `db:"role"`
	Content        sql.NullString `db:"content"`
	Name           sql.NullString `db:"name"`
	CreatedAt      time.Time      `db:"created_at"`
}

type tripPlanRow struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	Destination    string    `db:"destination"`
	StartDate      string    `db:"start_date"`
	EndDate        string    `db:"end_date"`
	Tags           string    `db:"tags"`
	Days           string    `db:"days"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Conversation methods
func (s *SQLiteStore) CreateConversation(ctx context.Context) (*Conversation, error) {
	now := time.Now().UTC()
	res, err := s.db.Insert("conversations", dbx.Params{
		"created_at": now,
		"updated_at": now,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, apperrors.Storage("CreateConversation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperrors.Storage("CreateConversation", err)
	}
	return &Conversation{ID: id, CreatedAt: now, UpdatedAt: now}, nil
}

// GetConversation returns nil without error when the conversation does not exist.
func (s *SQLiteStore) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var row conversationRow
	err := s.db.Select("id", "created_at", "updated_at").
		From("conversations").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Storage("GetConversation", err)
	}
	return &Conversation{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

// Message methods
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID int64, role Role, content string, name string) error {
	return s.AppendMessages(ctx, conversationID, []NewMessage{{Role: role, Content: content, Name: name}})
}

// AppendMessages inserts msgs in order inside one transaction.
func (s *SQLiteStore) AppendMessages(ctx context.Context, conversationID int64, msgs []NewMessage) error {
	for _, m := range msgs {
		if _, err := ParseRole(string(m.Role)); err != nil {
			return apperrors.Validation("AppendMessage", err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}

	err := s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		for _, m := range msgs {
			var name any
			if m.Name != "" {
				name = m.Name
			}
			_, err := tx.Insert("messages", dbx.Params{
				"conversation_id": conversationID,
				"role":            string(m.Role),
				"content":         m.Content,
				"name":            name,
				"created_at":      time.Now().UTC(),
			}).WithContext(ctx).Execute()
			if err != nil {
				return fmt.Errorf("insert %s message: %w", m.Role, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Storage("AppendMessages", err)
	}
	return nil
}

// ListMessages returns the conversation log in creation order.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	var rows []messageRow
	err := s.db.Select("id", "conversation_id", "role", "content", "name", "created_at").
		From("messages").
		Where(dbx.HashExp{"conversation_id": conversationID}).
		OrderBy("created_at ASC", "id ASC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, apperrors.Storage("ListMessages", err)
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		msg := Message{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			Role:           Role(row.Role.String),
			CreatedAt:      row.CreatedAt,
		}
		if row.Content.Valid {
			content := row.Content.String
			msg.Content = &content
		}
		if row.Name.Valid {
			name := row.Name.String
			msg.Name = &name
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Trip plan methods

// UpsertTripPlan keeps at most one plan per conversation. The lookup and the
// write share one immediate transaction; the unique index on conversation_id
// backs it up.
func (s *SQLiteStore) UpsertTripPlan(ctx context.Context, conversationID int64, plan TripDetails) (*UpsertResult, error) {
	tags, days, err := encodePlan(plan)
	if err != nil {
		return nil, apperrors.Storage("UpsertTripPlan", err)
	}

	result := &UpsertResult{}
	err = s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		now := time.Now().UTC()
		cols := dbx.Params{
			"destination": plan.Destination,
			"start_date":  plan.StartDate,
			"end_date":    plan.EndDate,
			"tags":        tags,
			"days":        days,
			"updated_at":  now,
		}

		var existingID int64
		err := tx.Select("id").
			From("trip_plans").
			Where(dbx.HashExp{"conversation_id": conversationID}).
			WithContext(ctx).
			Row(&existingID)
		switch {
		case err == nil:
			if _, err := tx.Update("trip_plans", cols, dbx.HashExp{"id": existingID}).WithContext(ctx).Execute(); err != nil {
				return fmt.Errorf("update trip plan %d: %w", existingID, err)
			}
			result.ID = existingID
			return nil
		case errors.Is(err, sql.ErrNoRows):
			cols["conversation_id"] = conversationID
			cols["created_at"] = now
			res, err := tx.Insert("trip_plans", cols).WithContext(ctx).Execute()
			if err != nil {
				return fmt.Errorf("insert trip plan: %w", err)
			}
			if result.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			result.Created = true
			return nil
		default:
			return fmt.Errorf("lookup trip plan: %w", err)
		}
	})
	if err != nil {
		return nil, apperrors.Storage("UpsertTripPlan", err)
	}

	s.log.Debug().
		Int64("conversationId", conversationID).
		Int64("tripPlanId", result.ID).
		Bool("created", result.Created).
		Msg("trip plan saved")
	return result, nil
}

func (s *SQLiteStore) ListTripPlans(ctx context.Context, conversationID int64) ([]TripPlan, error) {
	var rows []tripPlanRow
	err := s.db.Select("id", "conversation_id", "destination", "start_date", "end_date", "tags", "days", "created_at", "updated_at").
		From("trip_plans").
		Where(dbx.HashExp{"conversation_id": conversationID}).
		OrderBy("created_at ASC", "id ASC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, apperrors.Storage("ListTripPlans", err)
	}

	plans := make([]TripPlan, 0, len(rows))
	for _, row := range rows {
		details, err := decodePlan(row)
		if err != nil {
			return nil, apperrors.Storage("ListTripPlans", fmt.Errorf("decode trip plan %d: %w", row.ID, err))
		}
		plans = append(plans, TripPlan{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			TripDetails:    details,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return plans, nil
}

func encodePlan(plan TripDetails) (tags string, days string, err error) {
	tagsJSON, err := json.Marshal(plan.Tags)
	if err != nil {
		return "", "", fmt.Errorf("marshal tags: %w", err)
	}
	daysJSON, err := json.Marshal(plan.Days)
	if err != nil {
		return "", "", fmt.Errorf("marshal days: %w", err)
	}
	return string(tagsJSON), string(daysJSON), nil
}

func decodePlan(row tripPlanRow) (TripDetails, error) {
	details := TripDetails{
		Destination: row.Destination,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
	}
	if err := json.Unmarshal([]byte(row.Tags), &details.Tags); err != nil {
		return TripDetails{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Days), &details.Days); err != nil {
		return TripDetails{}, fmt.Errorf("unmarshal days: %w", err)
	}
	return details, nil
}
