package usecase

import (
	"context"
	"fmt"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
	userport "github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// ListConversationsOutput is the user's inbox plus display data for the peer
// of each thread, keyed by peer user id. A peer missing from the directory is
// simply absent from Peers; the thread itself still lists.
type ListConversationsOutput struct {
	Summaries []messaging.ConversationSummary
	Peers     map[string]userport.UserRef
}

// ListConversationsUseCase returns the user's inbox: non-archived
// conversations ordered by last activity, annotated with unread counts,
// latest-message previews and the peer's directory entry. Read-only, no side
// effects.
type ListConversationsUseCase struct {
	Repo  repository.MessagingRepository
	Users userport.UserDirectory
}

func NewListConversationsUseCase(repo repository.MessagingRepository, users userport.UserDirectory) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Users: users}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, userID string) (*ListConversationsOutput, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	summaries, err := uc.Repo.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	peers := map[string]userport.UserRef{}
	if uc.Users != nil && len(summaries) > 0 {
		seen := make(map[string]bool, len(summaries))
		peerIDs := make([]string, 0, len(summaries))
		for i := range summaries {
			id := summaries[i].OtherParticipant(userID)
			if id != "" && !seen[id] {
				seen[id] = true
				peerIDs = append(peerIDs, id)
			}
		}
		peers, err = uc.Users.GetByIDs(ctx, peerIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	return &ListConversationsOutput{Summaries: summaries, Peers: peers}, nil
}
