package notification

import (
	"context"
	"fmt"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/google/uuid"
)

// Directory is the user/department lookup the dispatcher depends on. The
// directory service satisfies it.
type Directory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*directory.User, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]directory.User, error)
	UsersInDepartment(ctx context.Context, id uuid.UUID) ([]directory.User, error)
}

// ResolveRecipients materializes an audience into a deduplicated recipient
// list: creator, directly referenced users, then members of every referenced
// department. Recipients without a mail address are dropped. The set is
// computed fresh on every call and never persisted.
func ResolveRecipients(ctx context.Context, dir Directory, audience Audience) ([]Recipient, error) {
	seen := make(map[uuid.UUID]struct{})
	var recipients []Recipient

	add := func(u directory.User) {
		if _, ok := seen[u.ID]; ok {
			return
		}
		seen[u.ID] = struct{}{}
		if u.Email == "" {
			return
		}
		recipients = append(recipients, Recipient{
			UserID:  u.ID,
			Name:    u.FullName,
			Address: u.Email,
		})
	}

	if audience.CreatorID != uuid.Nil {
		creator, err := dir.FindUser(ctx, audience.CreatorID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve creator: %w", err)
		}
		add(*creator)
	}

	users, err := dir.UsersByIDs(ctx, audience.UserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participant users: %w", err)
	}
	for _, u := range users {
		add(u)
	}

	for _, depID := range audience.DepartmentIDs {
		members, err := dir.UsersInDepartment(ctx, depID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve department %s: %w", depID, err)
		}
		for _, u := range members {
			add(u)
		}
	}

	return recipients, nil
}
