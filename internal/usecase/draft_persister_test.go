package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func draft(name string) entity.LeadDraft {
	return entity.LeadDraft{Name: name, Step: entity.StepContact}
}

func TestDraftPersisterSkipsWithoutContact(t *testing.T) {
	repo := new(MockLeadRepository)
	p := NewDraftPersister(repo, nil)

	p.Autosave(context.Background(), entity.LeadDraft{Role: entity.RoleOther, Challenges: "algo aqui"})

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, p.RecordID())
}

// TestDraftPersisterCreateThenUpdate - primeiro save cria, os seguintes atualizam pelo id
func TestDraftPersisterCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(l *entity.LeadDraft) bool {
		return l.Name == "Ana" && l.Status == entity.StatusDraft
	})).Return("lead-42", nil).Once()
	repo.On("Update", ctx, "lead-42", mock.MatchedBy(func(l *entity.LeadDraft) bool {
		return l.ID == "lead-42" && l.Name == "Ana Silva"
	})).Return(nil).Once()

	p := NewDraftPersister(repo, nil)
	p.Autosave(ctx, draft("Ana"))
	assert.Equal(t, "lead-42", p.RecordID())

	p.Autosave(ctx, draft("Ana Silva"))
	assert.Equal(t, "lead-42", p.RecordID())

	repo.AssertExpectations(t)
}

func TestDraftPersisterCreateErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("Create", ctx, mock.Anything).Return("", errors.New("connection refused")).Once()
	repo.On("Create", ctx, mock.Anything).Return("lead-1", nil).Once()

	p := NewDraftPersister(repo, nil)
	p.Autosave(ctx, draft("Ana"))
	assert.Empty(t, p.RecordID())

	// o próximo auto-save tenta criar de novo
	p.Autosave(ctx, draft("Ana"))
	assert.Equal(t, "lead-1", p.RecordID())
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestDraftPersisterFinalize(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)

	repo.On("Create", ctx, mock.Anything).Return("lead-7", nil)
	repo.On("Update", ctx, "lead-7", mock.MatchedBy(func(l *entity.LeadDraft) bool {
		return l.Completed && l.Status == entity.StatusCompleted && l.CompletedAt != nil
	})).Return(nil).Once()
	pub.On("PublishLeadCompleted", ctx, mock.MatchedBy(func(p queue.LeadCompletedPayload) bool {
		return p.LeadID == "lead-7" && p.Origin == queue.OriginForm
	})).Return(nil).Once()

	p := NewDraftPersister(repo, pub)
	p.Autosave(ctx, draft("Ana"))

	final := draft("Ana Silva")
	final.Completed = true
	p.Finalize(ctx, final)

	// depois de finalizado, auto-saves atrasados são ignorados
	p.Autosave(ctx, draft("Ana"))
	p.Finalize(ctx, final)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestDraftPersisterFinalizeWithoutID(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)

	p := NewDraftPersister(repo, pub)
	p.Finalize(context.Background(), draft("Ana"))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishLeadCompleted", mock.Anything, mock.Anything)
}

func TestDraftPersisterFinalizeUpdateErrorSkipsPublish(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	repo.On("Create", ctx, mock.Anything).Return("lead-1", nil)
	repo.On("Update", ctx, "lead-1", mock.Anything).Return(errors.New("timeout"))

	p := NewDraftPersister(repo, pub)
	p.Autosave(ctx, draft("Ana"))
	p.Finalize(ctx, draft("Ana"))

	pub.AssertNotCalled(t, "PublishLeadCompleted", mock.Anything, mock.Anything)
}

func TestDraftPersisterPublishErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	repo.On("Create", ctx, mock.Anything).Return("lead-1", nil)
	repo.On("Update", ctx, "lead-1", mock.Anything).Return(nil)
	pub.On("PublishLeadCompleted", ctx, mock.Anything).Return(errors.New("channel closed"))

	p := NewDraftPersister(repo, pub)
	p.Autosave(ctx, draft("Ana"))

	assert.NotPanics(t, func() { p.Finalize(ctx, draft("Ana")) })
	pub.AssertNumberOfCalls(t, "PublishLeadCompleted", 1)
}

// TestDraftPersisterSerializesCreate - create lento não gera um segundo registro
func TestDraftPersisterSerializesCreate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("Create", ctx, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return("lead-1", nil)
	repo.On("Update", ctx, "lead-1", mock.Anything).Return(nil)

	p := NewDraftPersister(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Autosave(ctx, draft("Ana"))
		}()
	}
	wg.Wait()

	repo.AssertNumberOfCalls(t, "Create", 1)
	repo.AssertNumberOfCalls(t, "Update", 1)
}
