package accountability

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/model"
)

const (
	wsID   = int64(1)
	userID = int64(10)
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestService wires the engine to a fresh fake store with a workspace
// whose sprints start on Monday 2024-01-01, frozen at the given "today".
func newTestService(t *testing.T, today time.Time) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.addWorkspace(wsID, date(2024, time.January, 1))
	svc := NewService(store, store, store, store, store, zap.NewNop()).
		WithClock(func() time.Time { return today })
	return svc, store
}

func itemsOfType(items []model.MissingItem, typ model.AccountabilityType) []model.MissingItem {
	var out []model.MissingItem
	for _, it := range items {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}

func TestCheckMissingUnknownWorkspace(t *testing.T) {
	svc, _ := newTestService(t, date(2024, time.January, 3))

	items, err := svc.CheckMissing(context.Background(), userID, 999)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no findings for unknown workspace, got %d", len(items))
	}
}

func TestMissingStandup(t *testing.T) {
	today := date(2024, time.January, 3) // Wednesday, sprint 1
	svc, store := newTestService(t, today)

	sprintID := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintActive,
	})
	assignee := userID
	store.addIssue(model.Issue{
		WorkspaceID: wsID, TicketNumber: 1, Title: "work", State: model.IssueTodo,
		AssigneeID: &assignee, SprintID: &sprintID,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.MissingStandup)
	if len(found) != 1 {
		t.Fatalf("expected 1 missing standup finding, got %d", len(found))
	}
	if found[0].TargetID != sprintID {
		t.Errorf("finding targets sprint %d, want %d", found[0].TargetID, sprintID)
	}
	if found[0].DueDate == nil || !found[0].DueDate.Equal(today) {
		t.Errorf("standup finding due %v, want today %s", found[0].DueDate, today.Format("2006-01-02"))
	}

	// Posting today's standup clears the finding.
	store.addDocument(model.Document{
		WorkspaceID: wsID, AuthorID: userID, Kind: model.DocStandup,
		SprintID: &sprintID, CreatedAt: today.Add(9 * time.Hour),
	})
	items, err = svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	if n := len(itemsOfType(items, model.MissingStandup)); n != 0 {
		t.Fatalf("expected no standup findings after posting, got %d", n)
	}
}

// Standup findings are never produced on weekends, regardless of state.
func TestMissingStandupWeekendGate(t *testing.T) {
	for _, today := range []time.Time{
		date(2024, time.January, 6), // Saturday
		date(2024, time.January, 7), // Sunday
	} {
		svc, store := newTestService(t, today)

		sprintID := store.addSprint(model.Sprint{
			WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintActive,
		})
		assignee := userID
		store.addIssue(model.Issue{
			WorkspaceID: wsID, TicketNumber: 1, Title: "work", State: model.IssueTodo,
			AssigneeID: &assignee, SprintID: &sprintID,
		})

		items, err := svc.CheckMissing(context.Background(), userID, wsID)
		if err != nil {
			t.Fatalf("CheckMissing: %v", err)
		}
		if n := len(itemsOfType(items, model.MissingStandup)); n != 0 {
			t.Errorf("%s: expected no standup findings on a weekend, got %d",
				today.Weekday(), n)
		}
	}
}

// Sprints where the user has no assigned issues are never surfaced by the
// standup rule.
func TestMissingStandupRequiresAssignedIssues(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintActive,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	if n := len(itemsOfType(items, model.MissingStandup)); n != 0 {
		t.Fatalf("expected no standup findings without assigned issues, got %d", n)
	}
}

func TestSprintHypothesisMissing(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 10)) // sprint 2

	// Started sprint without hypothesis: flagged, due at its start date.
	flagged := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintActive,
	})
	// Hypothesis written: not flagged.
	hyp := "ship the onboarding flow"
	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 2, Status: model.SprintActive, Hypothesis: &hyp,
	})
	// Future sprint: not flagged.
	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 5, Status: model.SprintPlanning,
	})
	// Deleted sprint: ignored.
	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintPlanning, Deleted: true,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.SprintHypothesisMissing)
	if len(found) != 1 {
		t.Fatalf("expected 1 hypothesis finding, got %d", len(found))
	}
	if found[0].TargetID != flagged {
		t.Errorf("finding targets sprint %d, want %d", found[0].TargetID, flagged)
	}
	wantDue := date(2024, time.January, 1)
	if found[0].DueDate == nil || !found[0].DueDate.Equal(wantDue) {
		t.Errorf("hypothesis finding due %v, want sprint start %s", found[0].DueDate, wantDue.Format("2006-01-02"))
	}
}

func TestSprintNotStarted(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	hyp := "h"
	planning := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1,
		Status: model.SprintPlanning, Hypothesis: &hyp, IssueCount: 3,
	})
	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1,
		Status: model.SprintCompleted, Hypothesis: &hyp, IssueCount: 3,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.SprintNotStarted)
	if len(found) != 1 || found[0].TargetID != planning {
		t.Fatalf("expected only the planning sprint flagged, got %+v", found)
	}
}

func TestSprintNoIssues(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	hyp := "h"
	empty := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1,
		Status: model.SprintActive, Hypothesis: &hyp, IssueCount: 0,
	})
	store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1,
		Status: model.SprintActive, Hypothesis: &hyp, IssueCount: 4,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.SprintNoIssues)
	if len(found) != 1 || found[0].TargetID != empty {
		t.Fatalf("expected only the empty sprint flagged, got %+v", found)
	}
}

// A sprint ending on Friday gets a one-business-day grace period: no review
// finding on Monday, a finding on Tuesday.
func TestSprintReviewGracePeriod(t *testing.T) {
	store := newFakeStore()
	// Saturday origin puts every sprint end on a Friday.
	store.addWorkspace(wsID, date(2024, time.January, 6))
	hyp := "h"
	sprintID := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1,
		Status: model.SprintCompleted, Hypothesis: &hyp, IssueCount: 1,
	})
	// Sprint 1 spans Sat 2024-01-06 .. Fri 2024-01-12.

	check := func(today time.Time) []model.MissingItem {
		svc := NewService(store, store, store, store, store, zap.NewNop()).
			WithClock(func() time.Time { return today })
		items, err := svc.CheckMissing(context.Background(), userID, wsID)
		if err != nil {
			t.Fatalf("CheckMissing: %v", err)
		}
		return itemsOfType(items, model.SprintReviewMissing)
	}

	if found := check(date(2024, time.January, 15)); len(found) != 0 { // Monday
		t.Fatalf("expected no review finding within grace period, got %+v", found)
	}
	found := check(date(2024, time.January, 16)) // Tuesday
	if len(found) != 1 || found[0].TargetID != sprintID {
		t.Fatalf("expected review finding after grace period, got %+v", found)
	}
	wantDeadline := date(2024, time.January, 15)
	if found[0].DueDate == nil || !found[0].DueDate.Equal(wantDeadline) {
		t.Errorf("review deadline %v, want %s", found[0].DueDate, wantDeadline.Format("2006-01-02"))
	}

	// Submitting a review clears the finding.
	store.addDocument(model.Document{
		WorkspaceID: wsID, AuthorID: userID, Kind: model.DocSprintReview,
		SprintID: &sprintID, CreatedAt: date(2024, time.January, 16),
	})
	if found := check(date(2024, time.January, 16)); len(found) != 0 {
		t.Fatalf("expected no review finding after submitting, got %+v", found)
	}
}

func TestProjectHypothesisMissing(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	flagged := store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Billing revamp",
	})
	hyp := "cut churn by 5%"
	store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Search", Hypothesis: &hyp,
	})
	store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Old", Archived: true,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.ProjectHypothesisMissing)
	if len(found) != 1 || found[0].TargetID != flagged {
		t.Fatalf("expected only the blank-hypothesis project flagged, got %+v", found)
	}
	if found[0].DueDate != nil {
		t.Errorf("project findings carry no due date, got %v", found[0].DueDate)
	}
}

func TestProjectRetroMissing(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	hyp := "h"
	finished := store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Finished", Hypothesis: &hyp,
	})
	inFlight := store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "InFlight", Hypothesis: &hyp,
	})
	empty := store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Empty", Hypothesis: &hyp,
	})

	store.addIssue(model.Issue{WorkspaceID: wsID, TicketNumber: 1, State: model.IssueDone, ProjectID: &finished})
	store.addIssue(model.Issue{WorkspaceID: wsID, TicketNumber: 2, State: model.IssueCancelled, ProjectID: &finished})
	store.addIssue(model.Issue{WorkspaceID: wsID, TicketNumber: 3, State: model.IssueDone, ProjectID: &inFlight})
	store.addIssue(model.Issue{WorkspaceID: wsID, TicketNumber: 4, State: model.IssueTodo, ProjectID: &inFlight})
	_ = empty // zero issues: not flagged

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	found := itemsOfType(items, model.ProjectRetroMissing)
	if len(found) != 1 || found[0].TargetID != finished {
		t.Fatalf("expected only the all-terminal project flagged, got %+v", found)
	}
}

// Once hypothesis_validated is set the project never reappears, even with
// every issue terminal.
func TestProjectRetroTerminalExemption(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))

	hyp := "h"
	validated := store.addProject(model.Project{
		WorkspaceID: wsID, OwnerID: userID, Name: "Validated",
		Hypothesis: &hyp, HypothesisValidated: true,
	})
	store.addIssue(model.Issue{WorkspaceID: wsID, TicketNumber: 1, State: model.IssueDone, ProjectID: &validated})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	if n := len(itemsOfType(items, model.ProjectRetroMissing)); n != 0 {
		t.Fatalf("validated project must be permanently exempt, got %d findings", n)
	}
}

// Before the workspace's sprint origin there is no active sprint: none of
// the sprint-scoped rules fire.
func TestNoSprintFindingsBeforeWorkspaceStart(t *testing.T) {
	svc, store := newTestService(t, date(2023, time.December, 27)) // Wednesday, pre-start

	sprintID := store.addSprint(model.Sprint{
		WorkspaceID: wsID, OwnerID: userID, SprintNumber: 1, Status: model.SprintPlanning,
	})
	assignee := userID
	store.addIssue(model.Issue{
		WorkspaceID: wsID, TicketNumber: 1, State: model.IssueTodo,
		AssigneeID: &assignee, SprintID: &sprintID,
	})

	items, err := svc.CheckMissing(context.Background(), userID, wsID)
	if err != nil {
		t.Fatalf("CheckMissing: %v", err)
	}
	for _, it := range items {
		if it.TargetType == model.TargetSprint {
			t.Fatalf("unexpected sprint finding before workspace start: %+v", it)
		}
	}
}

func TestEvaluatorErrorFailsWholeRun(t *testing.T) {
	svc, store := newTestService(t, date(2024, time.January, 3))
	store.projectsErr = context.DeadlineExceeded

	if _, err := svc.CheckMissing(context.Background(), userID, wsID); err == nil {
		t.Fatal("expected evaluator error to fail the run")
	}
	if _, err := svc.CheckAndCreate(context.Background(), userID, wsID); err == nil {
		t.Fatal("expected evaluator error to fail CheckAndCreate")
	}
}
