package usecase

import (
	"context"
	"errors"
	"fmt"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case.
var ErrPersistence = fmt.Errorf("messaging use case persistence error")

// ErrNotFound covers both "conversation does not exist" and "requester is not
// a participant". The two cases are deliberately indistinguishable so a
// non-participant cannot probe for a conversation's existence.
var ErrNotFound = errors.New("messaging: conversation not found")

func wrapPersistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// requireParticipant loads the conversation and verifies the requester is one
// of its two participants, folding absence and non-membership into ErrNotFound.
func requireParticipant(ctx context.Context, repo repository.MessagingRepository, conversationID, userID string) (*messaging.Conversation, error) {
	conv, err := repo.GetConversation(ctx, conversationID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotFound
	}
	return conv, nil
}
