package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
	userport "github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// FindOrCreateConversationInput carries a first-contact attempt. Context
// metadata is optional and only honored when the conversation is new.
type FindOrCreateConversationInput struct {
	RequesterID  string
	OtherUserID  string
	ContextID    *string
	ContextTitle *string
}

// FindOrCreateConversationOutput reports whether the call created the
// conversation or returned an existing one.
type FindOrCreateConversationOutput struct {
	Conversation *messaging.Conversation
	Created      bool
}

// FindOrCreateConversationUseCase resolves the single conversation for an
// unordered user pair, creating it on first contact. Idempotent per pair:
// a second create for the same pair returns the existing conversation and
// discards the new context metadata.
type FindOrCreateConversationUseCase struct {
	Repo  repository.MessagingRepository
	Users userport.UserDirectory
}

func NewFindOrCreateConversationUseCase(repo repository.MessagingRepository, users userport.UserDirectory) *FindOrCreateConversationUseCase {
	return &FindOrCreateConversationUseCase{Repo: repo, Users: users}
}

func (uc *FindOrCreateConversationUseCase) Execute(ctx context.Context, in FindOrCreateConversationInput) (*FindOrCreateConversationOutput, error) {
	if in.RequesterID == "" || in.OtherUserID == "" {
		return nil, fmt.Errorf("requester and recipient ids are required")
	}

	a, b, err := messaging.CanonicalPair(in.RequesterID, in.OtherUserID)
	if err != nil {
		return nil, err
	}

	known, err := uc.Users.Exists(ctx, in.OtherUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !known {
		return nil, ErrNotFound
	}

	conv, err := uc.Repo.FindConversationByPair(ctx, a, b)
	switch {
	case err == nil:
		if err := uc.reopenIfHidden(ctx, conv, in.RequesterID); err != nil {
			return nil, err
		}
		return &FindOrCreateConversationOutput{Conversation: conv}, nil
	case errors.Is(err, repository.ErrConversationNotFound):
		// fall through to create
	default:
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Postgres stores microseconds; truncate so the round-tripped timestamp
	// compares equal for a row this call created.
	now := time.Now().UTC().Truncate(time.Microsecond)
	created, err := uc.Repo.CreateConversation(ctx, messaging.Conversation{
		ParticipantA: a,
		ParticipantB: b,
		ContextID:    in.ContextID,
		ContextTitle: in.ContextTitle,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// A lost race returns the pre-existing row; detect it by creation time.
	// That row may carry the requester's archive flag, so it gets the same
	// reopen treatment as the find path.
	if err := uc.reopenIfHidden(ctx, created, in.RequesterID); err != nil {
		return nil, err
	}
	return &FindOrCreateConversationOutput{
		Conversation: created,
		Created:      created.CreatedAt.Equal(now),
	}, nil
}

// reopenIfHidden clears the requester's archive flag so first contact always
// lands in a visible thread.
func (uc *FindOrCreateConversationUseCase) reopenIfHidden(ctx context.Context, conv *messaging.Conversation, requesterID string) error {
	if !conv.HiddenFor(requesterID) {
		return nil
	}
	if err := uc.Repo.SetHidden(ctx, conv.ID, requesterID, false); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv.ParticipantA == requesterID {
		conv.HiddenForA = false
	} else {
		conv.HiddenForB = false
	}
	return nil
}
