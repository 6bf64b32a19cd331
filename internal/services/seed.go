package services

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

// Seed inserts the demo users and projects when the store is empty. A
// development convenience; it never touches a populated store.
func Seed(ctx context.Context, st store.Store, bcryptCost int) error {
	userCount, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	if userCount == 0 {
		for _, username := range []string{"admin", "user1", "user2"} {
			// Demo credentials: password equals the username.
			hashed, err := HashPassword(username, bcryptCost)
			if err != nil {
				return err
			}
			if err := st.CreateUser(ctx, &models.User{Username: username, Password: hashed}); err != nil {
				return err
			}
		}
	}

	projectCount, err := st.CountProjects(ctx)
	if err != nil {
		return err
	}
	if projectCount == 0 {
		seedProjects := []models.Project{
			{Name: "Demo Project", Description: "Sample project"},
			{Name: "Alpha Project", Description: "Main project"},
			{Name: "Beta Project", Description: "Secondary project"},
		}
		for i := range seedProjects {
			if err := st.CreateProject(ctx, &seedProjects[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
