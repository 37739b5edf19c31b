package usecase

import (
	"context"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// AppendMessageInput carries a message draft from the sending participant.
type AppendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// AppendMessageOutput returns the persisted message together with its
// conversation so the delivery coordinator can broadcast to the room.
type AppendMessageOutput struct {
	Conversation *messaging.Conversation
	Message      *messaging.Message
}

// AppendMessageUseCase persists a new message. Persistence must succeed
// before any broadcast is attempted; the caller owns the notify step.
type AppendMessageUseCase struct {
	Repo repository.MessagingRepository
}

func NewAppendMessageUseCase(repo repository.MessagingRepository) *AppendMessageUseCase {
	return &AppendMessageUseCase{Repo: repo}
}

func (uc *AppendMessageUseCase) Execute(ctx context.Context, in AppendMessageInput) (*AppendMessageOutput, error) {
	draft, err := messaging.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	conv, err := requireParticipant(ctx, uc.Repo, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, err
	}

	msg, err := uc.Repo.SaveMessage(ctx, *draft)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &AppendMessageOutput{Conversation: conv, Message: msg}, nil
}
