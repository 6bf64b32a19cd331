package services

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/store"
	"taskboard/internal/validate"
)

type ProjectInput struct {
	Name        string
	Description string
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectServiceImpl struct {
	store store.Store
}

func NewProjectService(st store.Store) *ProjectServiceImpl {
	return &ProjectServiceImpl{store: st}
}

func validateProjectInput(in ProjectInput) (name, description string, err error) {
	name, err = validate.Length("Project name", in.Name, validate.MaxProjectName)
	if err != nil {
		return "", "", err
	}
	name, err = validate.Required("Project name", name)
	if err != nil {
		return "", "", err
	}
	description, err = validate.Length("Project description", in.Description, validate.MaxProjectDescription)
	if err != nil {
		return "", "", err
	}
	return name, description, nil
}

func (s *ProjectServiceImpl) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	name, description, err := validateProjectInput(in)
	if err != nil {
		return nil, err
	}
	project := &models.Project{Name: name, Description: description}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectServiceImpl) Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	name, description, err := validateProjectInput(in)
	if err != nil {
		return nil, err
	}
	project.Name = name
	project.Description = description
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and unsets project_id on its tasks so no
// dangling references remain.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	return s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.ClearTaskProject(ctx, id); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, id)
	})
}
