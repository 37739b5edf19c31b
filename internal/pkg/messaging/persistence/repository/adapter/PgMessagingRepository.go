package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

const conversationColumns = `id::text, participant_a::text, participant_b::text,
	context_id, context_title, created_at, last_activity_at, hidden_for_a, hidden_for_b`

type PgMessagingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{pool: pool}
}

var _ repository.MessagingRepository = (*PgMessagingRepository)(nil)

func (r *PgMessagingRepository) FindConversationByPair(ctx context.Context, participantA, participantB string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM messaging.conversation
		WHERE participant_a = $1::uuid AND participant_b = $2::uuid
	`, participantA, participantB)
	return scanConversation(row)
}

func (r *PgMessagingRepository) CreateConversation(ctx context.Context, c messaging.Conversation) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	// ON CONFLICT ... DO UPDATE with a no-op assignment makes the insert
	// race-safe while still returning the surviving row; the loser's context
	// metadata is discarded (first contact wins).
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messaging.conversation
			(participant_a, participant_b, context_id, context_title, created_at, last_activity_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $5)
		ON CONFLICT (participant_a, participant_b)
		DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING `+conversationColumns+`
	`, c.ParticipantA, c.ParticipantB, c.ContextID, c.ContextTitle, c.CreatedAt)
	return scanConversation(row)
}

func (r *PgMessagingRepository) GetConversation(ctx context.Context, conversationID string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM messaging.conversation
		WHERE id = $1::uuid
	`, conversationID)
	return scanConversation(row)
}

func (r *PgMessagingRepository) ListConversationsForUser(ctx context.Context, userID string) ([]messaging.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`,
			(SELECT count(*) FROM messaging.message m
			 WHERE m.conversation_id = c.id AND m.sender_id <> $1::uuid AND m.read_at IS NULL) AS unread,
			lm.sender_id::text, lm.content, lm.created_at
		FROM messaging.conversation c
		LEFT JOIN LATERAL (
			SELECT sender_id, content, created_at
			FROM messaging.message
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON true
		WHERE (c.participant_a = $1::uuid AND NOT c.hidden_for_a)
		   OR (c.participant_b = $1::uuid AND NOT c.hidden_for_b)
		ORDER BY c.last_activity_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []messaging.ConversationSummary
	for rows.Next() {
		var (
			s         messaging.ConversationSummary
			lmSender  *string
			lmContent *string
			lmAt      *time.Time
		)
		if err := rows.Scan(
			&s.ID, &s.ParticipantA, &s.ParticipantB,
			&s.ContextID, &s.ContextTitle, &s.CreatedAt, &s.LastActivityAt,
			&s.HiddenForA, &s.HiddenForB,
			&s.UnreadCount, &lmSender, &lmContent, &lmAt,
		); err != nil {
			return nil, err
		}
		if lmSender != nil && lmContent != nil && lmAt != nil {
			s.LastMessage = &messaging.MessagePreview{
				SenderID:  *lmSender,
				Content:   *lmContent,
				CreatedAt: *lmAt,
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *PgMessagingRepository) SetHidden(ctx context.Context, conversationID, userID string, hidden bool) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.conversation
		SET hidden_for_a = CASE WHEN participant_a = $2::uuid THEN $3 ELSE hidden_for_a END,
		    hidden_for_b = CASE WHEN participant_b = $2::uuid THEN $3 ELSE hidden_for_b END
		WHERE id = $1::uuid AND (participant_a = $2::uuid OR participant_b = $2::uuid)
	`, conversationID, userID, hidden)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrConversationNotFound
	}
	return nil
}

func (r *PgMessagingRepository) DeleteMutuallyHidden(ctx context.Context) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM messaging.conversation
		WHERE hidden_for_a AND hidden_for_b
	`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgMessagingRepository) SaveMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	saved := m
	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.message (conversation_id, sender_id, content)
		VALUES ($1::uuid, $2::uuid, $3)
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.Content).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}

	// New activity bumps the ordering timestamp and resurfaces the thread
	// for a participant who had archived it.
	_, err = tx.Exec(ctx, `
		UPDATE messaging.conversation
		SET last_activity_at = $2, hidden_for_a = false, hidden_for_b = false
		WHERE id = $1::uuid
	`, m.ConversationID, saved.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PgMessagingRepository) PageMessages(ctx context.Context, conversationID string, limit, offset int) ([]messaging.Message, int64, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("PgMessagingRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM messaging.message WHERE conversation_id = $1::uuid",
		conversationID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, created_at, read_at
		FROM messaging.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var msg messaging.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.ReadAt); err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, total, rows.Err()
}

func (r *PgMessagingRepository) MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.message
		SET read_at = $3
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND read_at IS NULL
	`, conversationID, readerID, at)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgMessagingRepository) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messaging.message m
		JOIN messaging.conversation c ON c.id = m.conversation_id
		WHERE (c.participant_a = $1::uuid OR c.participant_b = $1::uuid)
		  AND m.sender_id <> $1::uuid
		  AND m.read_at IS NULL
	`, userID).Scan(&count)
	return count, err
}

func scanConversation(row pgx.Row) (*messaging.Conversation, error) {
	var c messaging.Conversation
	err := row.Scan(
		&c.ID, &c.ParticipantA, &c.ParticipantB,
		&c.ContextID, &c.ContextTitle, &c.CreatedAt, &c.LastActivityAt,
		&c.HiddenForA, &c.HiddenForB,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
