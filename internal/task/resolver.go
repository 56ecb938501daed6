package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// ProjectResolver finds the project an entity belongs to by walking
// Task → Version → Project. Version lookups are cached for the resolver's
// lifetime, so create one per command rather than per process.
//
// It satisfies history.ProjectResolver.
type ProjectResolver struct {
	repo *Repository

	mu       sync.Mutex
	versions map[string]string
}

// NewProjectResolver creates a resolver over repo.
func NewProjectResolver(repo *Repository) *ProjectResolver {
	return &ProjectResolver{repo: repo, versions: make(map[string]string)}
}

// ProjectOf returns the project ID of a task, version or project. An entity
// without a version or project link returns an error wrapping ErrNotFound.
func (p *ProjectResolver) ProjectOf(ctx context.Context, entityType, entityID string) (string, error) {
	switch entityType {
	case constants.EntityProject:
		return entityID, nil
	case constants.EntityVersion:
		return p.projectOfVersion(ctx, entityID)
	case constants.EntityTask:
		t, err := p.repo.Get(ctx, entityID)
		if err != nil {
			return "", err
		}
		return p.ProjectOfTask(ctx, t)
	default:
		return "", fmt.Errorf("entity type %q has no project: %w", entityType, nferrors.ErrInvalidArgument)
	}
}

// ProjectOfTask returns the project ID of an already loaded task.
func (p *ProjectResolver) ProjectOfTask(ctx context.Context, t *domain.Task) (string, error) {
	if t.VersionID == "" {
		return "", fmt.Errorf("task '%s' has no version: %w", t.ID, nferrors.ErrNotFound)
	}
	return p.projectOfVersion(ctx, t.VersionID)
}

// InProject reports whether t belongs to projectID. Tasks without a version,
// or whose version has no project, belong to no project.
func (p *ProjectResolver) InProject(ctx context.Context, t *domain.Task, projectID string) (bool, error) {
	got, err := p.ProjectOfTask(ctx, t)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return got == projectID, nil
}

func (p *ProjectResolver) projectOfVersion(ctx context.Context, versionID string) (string, error) {
	p.mu.Lock()
	projectID, ok := p.versions[versionID]
	p.mu.Unlock()
	if ok {
		return projectID, nil
	}

	v, err := p.repo.Version(ctx, versionID)
	if err != nil {
		return "", err
	}
	if v.ProjectID == "" {
		return "", fmt.Errorf("version '%s' has no project: %w", versionID, nferrors.ErrNotFound)
	}

	p.mu.Lock()
	p.versions[versionID] = v.ProjectID
	p.mu.Unlock()
	return v.ProjectID, nil
}
