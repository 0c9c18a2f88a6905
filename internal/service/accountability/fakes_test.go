package accountability

import (
	"context"
	"sync"
	"time"

	"github.com/cadencehq/cadence/internal/model"
)

// fakeStore is an in-memory implementation of the store interfaces. Its
// CreateRemediation mirrors the production contract: concurrent creators
// for one workspace serialize on a per-workspace mutex, the uniqueness
// check is repeated under that lock, and ticket numbers are allocated as
// max+1 inside the critical section.
type fakeStore struct {
	mu         sync.Mutex
	locks      map[int64]*sync.Mutex
	workspaces map[int64]model.Workspace
	sprints    []model.Sprint
	projects   []model.Project
	documents  []model.Document
	issues     []model.Issue
	nextID     int64

	projectsErr error // when set, OwnedActive fails
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		locks:      make(map[int64]*sync.Mutex),
		workspaces: make(map[int64]model.Workspace),
		nextID:     1,
	}
}

func (f *fakeStore) addWorkspace(id int64, start time.Time) {
	f.workspaces[id] = model.Workspace{
		ID:               id,
		Name:             "ws",
		SprintStartDate:  start,
		SprintLengthDays: 7,
	}
}

func (f *fakeStore) addSprint(s model.Sprint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.nextID
	f.nextID++
	f.sprints = append(f.sprints, s)
	return s.ID
}

func (f *fakeStore) addProject(p model.Project) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	f.projects = append(f.projects, p)
	return p.ID
}

func (f *fakeStore) addDocument(d model.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.nextID
	f.nextID++
	f.documents = append(f.documents, d)
}

func (f *fakeStore) addIssue(i model.Issue) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	i.ID = f.nextID
	f.nextID++
	f.issues = append(f.issues, i)
	return i.ID
}

func (f *fakeStore) Get(_ context.Context, id int64) (*model.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, nil
	}
	return &ws, nil
}

func (f *fakeStore) OwnedStarted(_ context.Context, workspaceID, ownerID int64, maxSprintNumber int) ([]model.Sprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Sprint
	for _, s := range f.sprints {
		if s.WorkspaceID == workspaceID && s.OwnerID == ownerID &&
			s.SprintNumber <= maxSprintNumber && !s.Deleted && !s.Archived {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) WithAssignedIssues(_ context.Context, workspaceID, userID int64, sprintNumber int) ([]model.Sprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Sprint
	for _, s := range f.sprints {
		if s.WorkspaceID != workspaceID || s.SprintNumber != sprintNumber || s.Deleted || s.Archived {
			continue
		}
		for _, i := range f.issues {
			if i.SprintID != nil && *i.SprintID == s.ID &&
				i.AssigneeID != nil && *i.AssigneeID == userID && !i.Deleted {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) OwnedActive(_ context.Context, workspaceID, ownerID int64) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	var out []model.Project
	for _, p := range f.projects {
		if p.WorkspaceID == workspaceID && p.OwnerID == ownerID && !p.Deleted && !p.Archived {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistsForSprint(_ context.Context, kind string, sprintID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.documents {
		if d.Kind == kind && d.SprintID != nil && *d.SprintID == sprintID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExistsForAuthorOn(_ context.Context, kind string, sprintID, authorID int64, day time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, d := range f.documents {
		if d.Kind == kind && d.SprintID != nil && *d.SprintID == sprintID && d.AuthorID == authorID &&
			!d.CreatedAt.Before(dayStart) && d.CreatedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) findOpenLocked(workspaceID, targetID int64, typ model.AccountabilityType) *model.Issue {
	for idx := range f.issues {
		i := &f.issues[idx]
		if i.WorkspaceID == workspaceID && !i.Deleted && i.Open() &&
			i.AccountabilityTargetID != nil && *i.AccountabilityTargetID == targetID &&
			i.AccountabilityType != nil && *i.AccountabilityType == string(typ) {
			cp := *i
			return &cp
		}
	}
	return nil
}

func (f *fakeStore) FindOpenRemediation(_ context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (*model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findOpenLocked(workspaceID, targetID, typ), nil
}

func (f *fakeStore) workspaceLock(workspaceID int64) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[workspaceID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[workspaceID] = l
	}
	return l
}

func (f *fakeStore) CreateRemediation(_ context.Context, issue *model.Issue) (*model.Issue, bool, error) {
	lock := f.workspaceLock(issue.WorkspaceID)
	lock.Lock()
	defer lock.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing := f.findOpenLocked(issue.WorkspaceID, *issue.AccountabilityTargetID, model.AccountabilityType(*issue.AccountabilityType)); existing != nil {
		return existing, false, nil
	}

	var max int64
	for _, i := range f.issues {
		if i.WorkspaceID == issue.WorkspaceID && i.TicketNumber > max {
			max = i.TicketNumber
		}
	}

	created := *issue
	created.ID = f.nextID
	f.nextID++
	created.TicketNumber = max + 1
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.issues = append(f.issues, created)

	cp := created
	return &cp, true, nil
}

func (f *fakeStore) ResolveRemediation(_ context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx := range f.issues {
		i := &f.issues[idx]
		if i.WorkspaceID == workspaceID && !i.Deleted && i.Open() &&
			i.AccountabilityTargetID != nil && *i.AccountabilityTargetID == targetID &&
			i.AccountabilityType != nil && *i.AccountabilityType == string(typ) {
			now := time.Now()
			i.State = model.IssueDone
			i.CompletedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ProjectIssueStats(_ context.Context, projectID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, open int
	for _, i := range f.issues {
		if i.ProjectID != nil && *i.ProjectID == projectID && !i.Deleted {
			total++
			if i.Open() {
				open++
			}
		}
	}
	return total, open, nil
}

// openRemediationCount counts open remediation issues for one target/type.
func (f *fakeStore) openRemediationCount(workspaceID, targetID int64, typ model.AccountabilityType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, i := range f.issues {
		if i.WorkspaceID == workspaceID && !i.Deleted && i.Open() &&
			i.AccountabilityTargetID != nil && *i.AccountabilityTargetID == targetID &&
			i.AccountabilityType != nil && *i.AccountabilityType == string(typ) {
			count++
		}
	}
	return count
}
