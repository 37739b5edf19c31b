package usecase

import (
	"context"
	"time"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// GetConversationInput fetches a conversation with one page of history.
type GetConversationInput struct {
	ConversationID string
	RequesterID    string
	Page           int
	Limit          int
}

// GetConversationOutput carries the conversation, a history page and the
// number of messages the fetch marked as read (opening a conversation
// implies reading it).
type GetConversationOutput struct {
	Conversation *messaging.Conversation
	Messages     []messaging.Message
	Page         int
	Limit        int
	Total        int64
	TotalPages   int64
	MarkedRead   int64
}

// GetConversationUseCase returns a conversation plus messages for a
// participant and, as a side effect, marks everything addressed to the
// requester as read.
type GetConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewGetConversationUseCase(repo repository.MessagingRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) (*GetConversationOutput, error) {
	conv, err := requireParticipant(ctx, uc.Repo, in.ConversationID, in.RequesterID)
	if err != nil {
		return nil, err
	}

	// Mark-read runs before the page query so the returned messages carry
	// their read_at stamps.
	marked, err := uc.Repo.MarkConversationRead(ctx, conv.ID, in.RequesterID, time.Now().UTC())
	if err != nil {
		return nil, wrapPersistence(err)
	}

	page, limit := clampPage(in.Page, in.Limit)
	msgs, total, err := uc.Repo.PageMessages(ctx, conv.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, wrapPersistence(err)
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &GetConversationOutput{
		Conversation: conv,
		Messages:     msgs,
		Page:         page,
		Limit:        limit,
		Total:        total,
		TotalPages:   totalPages,
		MarkedRead:   marked,
	}, nil
}
