package usecase

import (
	"context"
	"time"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// MarkReadOutput reports how many messages the call transitioned to read.
// Zero means the call was a no-op, which is not an error.
type MarkReadOutput struct {
	Conversation *messaging.Conversation
	MarkedRead   int64
}

// MarkReadUseCase stamps read_at on every unread message addressed to the
// reader. Idempotent: marking twice has the effect of marking once, and an
// existing read_at is never reverted or overwritten.
type MarkReadUseCase struct {
	Repo repository.MessagingRepository
}

func NewMarkReadUseCase(repo repository.MessagingRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, conversationID, readerID string) (*MarkReadOutput, error) {
	conv, err := requireParticipant(ctx, uc.Repo, conversationID, readerID)
	if err != nil {
		return nil, err
	}

	marked, err := uc.Repo.MarkConversationRead(ctx, conv.ID, readerID, time.Now().UTC())
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &MarkReadOutput{Conversation: conv, MarkedRead: marked}, nil
}
