package usecase

import (
	"context"
	"fmt"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationUseCase gates realtime room membership: a socket may only
// join the room of a conversation its user participates in.
type JoinConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewJoinConversationUseCase(repo repository.MessagingRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, conversationID, userID string) (*messaging.Conversation, error) {
	if conversationID == "" || userID == "" {
		return nil, fmt.Errorf("conversation id and user id are required")
	}
	return requireParticipant(ctx, uc.Repo, conversationID, userID)
}
