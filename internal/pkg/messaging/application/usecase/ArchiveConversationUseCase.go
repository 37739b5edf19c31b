package usecase

import (
	"context"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// ArchiveConversationUseCase hides a conversation for one participant only.
// The other participant keeps their history; a hard delete happens later,
// in the background, once both sides have archived. This is what the DELETE
// endpoint maps to. Destroying the peer's history from one side is not on
// offer.
type ArchiveConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewArchiveConversationUseCase(repo repository.MessagingRepository) *ArchiveConversationUseCase {
	return &ArchiveConversationUseCase{Repo: repo}
}

func (uc *ArchiveConversationUseCase) Execute(ctx context.Context, conversationID, requesterID string) (*messaging.Conversation, error) {
	conv, err := requireParticipant(ctx, uc.Repo, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := uc.Repo.SetHidden(ctx, conv.ID, requesterID, true); err != nil {
		return nil, wrapPersistence(err)
	}
	return conv, nil
}
