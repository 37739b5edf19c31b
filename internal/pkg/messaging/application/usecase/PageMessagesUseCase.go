package usecase

import (
	"context"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// PageMessagesInput selects one page of conversation history. Page numbers
// start at 1; limit is clamped to a safe range.
type PageMessagesInput struct {
	ConversationID string
	RequesterID    string
	Page           int
	Limit          int
}

// PageMessagesOutput is one history page, oldest to newest, with totals for
// paginating further back.
type PageMessagesOutput struct {
	Messages   []messaging.Message
	Page       int
	Limit      int
	Total      int64
	TotalPages int64
}

// PageMessagesUseCase paginates a conversation's history for a participant.
type PageMessagesUseCase struct {
	Repo repository.MessagingRepository
}

func NewPageMessagesUseCase(repo repository.MessagingRepository) *PageMessagesUseCase {
	return &PageMessagesUseCase{Repo: repo}
}

func (uc *PageMessagesUseCase) Execute(ctx context.Context, in PageMessagesInput) (*PageMessagesOutput, error) {
	if _, err := requireParticipant(ctx, uc.Repo, in.ConversationID, in.RequesterID); err != nil {
		return nil, err
	}

	page, limit := clampPage(in.Page, in.Limit)
	msgs, total, err := uc.Repo.PageMessages(ctx, in.ConversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, wrapPersistence(err)
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &PageMessagesOutput{
		Messages:   msgs,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
