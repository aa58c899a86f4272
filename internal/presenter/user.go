package presenter

import (
	"time"

	"github.com/phrazzld/roster-api/internal/domain"
)

// UserSpec builds the allow-list for presenting users. The credential hash
// is not on the list and therefore can never appear in a response.
func UserSpec() *Spec {
	return &Spec{
		Name: "user",
		Fields: []Field{
			{Name: "id", Value: userField(func(u *domain.User) any { return u.ID })},
			{Name: "email", Value: userField(func(u *domain.User) any { return u.Email })},
			{Name: "first_name", Value: userField(func(u *domain.User) any { return u.FirstName })},
			{Name: "last_name", Value: userField(func(u *domain.User) any { return u.LastName })},
			// Derived field, not stored on the entity.
			{Name: "full_name", Value: userField(func(u *domain.User) any { return u.FullName() })},
			{Name: "created_at", Value: userField(func(u *domain.User) any {
				return u.CreatedAt.UTC().Format(time.RFC3339)
			})},
		},
	}
}

// userField adapts a typed extractor to the presenter's FieldFunc contract.
func userField(fn func(u *domain.User) any) FieldFunc {
	return func(entity any) any {
		u, ok := entity.(*domain.User)
		if !ok {
			return nil
		}
		return fn(u)
	}
}
