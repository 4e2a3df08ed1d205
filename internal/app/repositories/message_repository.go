package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/db"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// MessageRepository handles conversations, participants and messages
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db, sb: newBuilder()}
}

// CreateConversation inserts a conversation and its participants
func (r *MessageRepository) CreateConversation(ctx context.Context, conv *models.Conversation, participantIDs []int64) (int64, error) {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("conversations").
			Columns("subject", "application_id", "created_by").
			Values(conv.Subject, conv.ApplicationID, conv.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create conversation query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return fmt.Errorf("error creating conversation: %w", err)
		}

		insert := r.sb.Insert("conversation_participants").Columns("conversation_id", "user_id")
		for _, uid := range participantIDs {
			insert = insert.Values(conv.ID, uid)
		}
		sql, args, err = insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build add participants query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error adding participants: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("createdBy", conv.CreatedBy).Msg("Error creating conversation")
		return 0, err
	}
	return conv.ID, nil
}

// FindDirectConversation finds the two-party conversation of userA and userB
// for the same application context (nil matches conversations without one).
func (r *MessageRepository) FindDirectConversation(ctx context.Context, userA, userB int64, applicationID *int64) (*models.Conversation, error) {
	query := r.sb.Select("c.id", "c.subject", "c.application_id", "c.created_by", "c.last_message_at", "c.created_at", "c.updated_at").
		From("conversations c").
		Where("(SELECT COUNT(*) FROM conversation_participants cp WHERE cp.conversation_id = c.id) = 2").
		Where("EXISTS (SELECT 1 FROM conversation_participants cp WHERE cp.conversation_id = c.id AND cp.user_id = ?)", userA).
		Where("EXISTS (SELECT 1 FROM conversation_participants cp WHERE cp.conversation_id = c.id AND cp.user_id = ?)", userB).
		OrderBy("c.id ASC").
		Limit(1)
	if applicationID != nil {
		query = query.Where(squirrel.Eq{"c.application_id": *applicationID})
	} else {
		query = query.Where(squirrel.Eq{"c.application_id": nil})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find conversation query: %w", err)
	}

	conv, err := scanConversation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		logger.Error().Err(err).Msg("Error finding direct conversation")
		return nil, fmt.Errorf("error finding conversation: %w", err)
	}
	return conv, nil
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := row.Scan(&c.ID, &c.Subject, &c.ApplicationID, &c.CreatedBy, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetConversation retrieves a conversation by id
func (r *MessageRepository) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	sql, args, err := r.sb.Select("id", "subject", "application_id", "created_by", "last_message_at", "created_at", "updated_at").
		From("conversations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get conversation query: %w", err)
	}

	conv, err := scanConversation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		logger.Error().Err(err).Int64("conversationID", id).Msg("Error getting conversation")
		return nil, fmt.Errorf("error getting conversation: %w", err)
	}
	return conv, nil
}

// IsParticipant reports whether userID belongs to the conversation
func (r *MessageRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("conversation_participants").
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build participant check query: %w", err)
	}

	var ok bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		logger.Error().Err(err).Int64("conversationID", conversationID).Msg("Error checking participant")
		return false, fmt.Errorf("error checking participant: %w", err)
	}
	return ok, nil
}

// ListParticipants returns the user ids of a conversation
func (r *MessageRepository) ListParticipants(ctx context.Context, conversationID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("user_id").
		From("conversation_participants").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect participants: %w", err)
	}
	return ids, nil
}

// ListConversations returns a page of the user's conversations, most recent activity first
func (r *MessageRepository) ListConversations(ctx context.Context, userID int64, page, size int) ([]*models.ConversationSummary, int64, error) {
	count := r.sb.Select("COUNT(*)").From("conversation_participants").Where(squirrel.Eq{"user_id": userID})
	total, err := countRows(ctx, r.db, count, "conversations")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.ConversationSummary{}, 0, nil
	}

	query := r.sb.Select(
		"c.id", "c.subject", "c.application_id", "c.created_by", "c.last_message_at", "c.created_at", "c.updated_at",
		"ARRAY(SELECT p.user_id FROM conversation_participants p WHERE p.conversation_id = c.id ORDER BY p.user_id)",
		"(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id <> me.user_id AND (me.last_read_at IS NULL OR m.created_at > me.last_read_at))",
		"COALESCE((SELECT m.content FROM messages m WHERE m.conversation_id = c.id ORDER BY m.id DESC LIMIT 1), '')",
	).
		From("conversations c").
		Join("conversation_participants me ON me.conversation_id = c.id AND me.user_id = ?", userID).
		OrderBy("COALESCE(c.last_message_at, c.created_at) DESC", "c.id DESC")

	sql, args, err := paginate(query, page, size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list conversations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list conversations query")
		return nil, 0, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	list := []*models.ConversationSummary{}
	for rows.Next() {
		s := &models.ConversationSummary{}
		if err := rows.Scan(&s.ID, &s.Subject, &s.ApplicationID, &s.CreatedBy, &s.LastMessageAt, &s.CreatedAt, &s.UpdatedAt,
			&s.ParticipantIDs, &s.UnreadCount, &s.LastMessage); err != nil {
			return nil, 0, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return list, total, nil
}

// CreateMessage stores a message and bumps the conversation activity; the
// sender's own read marker moves with it.
func (r *MessageRepository) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("messages").
			Columns("conversation_id", "sender_id", "content").
			Values(m.ConversationID, m.SenderID, m.Content).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create message query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
			return fmt.Errorf("error creating message: %w", err)
		}

		sql, args, err = r.sb.Update("conversations").
			Set("last_message_at", m.CreatedAt).
			Set("updated_at", m.CreatedAt).
			Where(squirrel.Eq{"id": m.ConversationID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build touch conversation query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating conversation: %w", err)
		}

		return r.markRead(ctx, tx, m.ConversationID, m.SenderID, m.CreatedAt)
	})
	if err != nil {
		logger.Error().Err(err).Int64("conversationID", m.ConversationID).Msg("Error creating message")
		return 0, err
	}
	return m.ID, nil
}

// ListMessages returns up to limit messages older than before (0 = newest), newest first
func (r *MessageRepository) ListMessages(ctx context.Context, conversationID, before int64, limit int) ([]*models.Message, error) {
	query := r.sb.Select("id", "conversation_id", "sender_id", "content", "created_at").
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("id DESC").
		Limit(uint64(limit))
	if before > 0 {
		query = query.Where(squirrel.Lt{"id": before})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("conversationID", conversationID).Msg("Error executing list messages query")
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// MarkRead moves the user's read marker of a conversation to at
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, userID int64, at time.Time) error {
	return r.markRead(ctx, r.db, conversationID, userID, at)
}

func (r *MessageRepository) markRead(ctx context.Context, q querier, conversationID, userID int64, at time.Time) error {
	sql, args, err := r.sb.Update("conversation_participants").
		Set("last_read_at", at).
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking conversation read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotParticipant
	}
	return nil
}

// CountUnread counts messages from others the user has not read, across conversations
func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	count := r.sb.Select("COUNT(*)").
		From("messages m").
		Join("conversation_participants me ON me.conversation_id = m.conversation_id AND me.user_id = ?", userID).
		Where("m.sender_id <> me.user_id").
		Where("(me.last_read_at IS NULL OR m.created_at > me.last_read_at)")
	return countRows(ctx, r.db, count, "unread messages")
}
