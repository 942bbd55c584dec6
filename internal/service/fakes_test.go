package service

import (
	"context"
	"sync"

	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/repository/contract"
	"ai-chatspace-be/internal/repository/specification"
	"ai-chatspace-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeStore is a shared in-memory backing for the fake repositories. The
// fakes interpret the same specification values the GORM implementations
// translate to SQL.
type fakeStore struct {
	mu         sync.Mutex
	users      []*entity.User
	workspaces []*entity.Workspace
	chats      []*entity.Chat
	messages   []*entity.Message
}

type fakeFactory struct {
	store *fakeStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{store: &fakeStore{}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) WorkspaceRepository() contract.WorkspaceRepository {
	return &fakeWorkspaceRepo{store: u.store}
}

func (u *fakeUow) ChatRepository() contract.ChatRepository {
	return &fakeChatRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users = append(r.store.users, &cp)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, u := range r.store.users {
		if u.Id == user.Id {
			cp := *user
			r.store.users[i] = &cp
		}
	}
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	return nil
}

type fakeWorkspaceRepo struct {
	store *fakeStore
}

func (r *fakeWorkspaceRepo) Create(ctx context.Context, workspace *entity.Workspace) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *workspace
	r.store.workspaces = append(r.store.workspaces, &cp)
	return nil
}

func (r *fakeWorkspaceRepo) Update(ctx context.Context, workspace *entity.Workspace) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, w := range r.store.workspaces {
		if w.Id == workspace.Id {
			cp := *workspace
			r.store.workspaces[i] = &cp
		}
	}
	return nil
}

func (r *fakeWorkspaceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.workspaces[:0]
	for _, w := range r.store.workspaces {
		if w.Id != id {
			kept = append(kept, w)
		}
	}
	r.store.workspaces = kept
	return nil
}

func (r *fakeWorkspaceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.workspaces {
		if matchWorkspace(w, specs) {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWorkspaceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Workspace
	for _, w := range r.store.workspaces {
		if matchWorkspace(w, specs) {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	store *fakeStore
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *chat
	r.store.chats = append(r.store.chats, &cp)
	return nil
}

func (r *fakeChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, c := range r.store.chats {
		if c.Id == chat.Id {
			cp := *chat
			r.store.chats[i] = &cp
		}
	}
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chats[:0]
	for _, c := range r.store.chats {
		if c.Id != id {
			kept = append(kept, c)
		}
	}
	r.store.chats = kept
	return nil
}

func (r *fakeChatRepo) DeleteByWorkspaceId(ctx context.Context, workspaceId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chats[:0]
	for _, c := range r.store.chats {
		if c.WorkspaceId != workspaceId {
			kept = append(kept, c)
		}
	}
	r.store.chats = kept
	return nil
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.chats {
		if matchChat(c, specs) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Chat
	for _, c := range r.store.chats {
		if matchChat(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) DeleteByChatId(ctx context.Context, chatId uuid.UUID) error {
	return r.DeleteByChatIds(ctx, []uuid.UUID{chatId})
}

func (r *fakeMessageRepo) DeleteByChatIds(ctx context.Context, chatIds []uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := map[uuid.UUID]bool{}
	for _, id := range chatIds {
		ids[id] = true
	}
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if !ids[m.ChatId] {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.store.messages {
		if matchMessage(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != sp.Email {
				return false
			}
		}
	}
	return true
}

func matchWorkspace(w *entity.Workspace, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if w.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if w.OwnerId != sp.OwnerID {
				return false
			}
		}
	}
	return true
}

func matchChat(c *entity.Chat, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if c.OwnerId != sp.OwnerID {
				return false
			}
		case specification.ByWorkspaceID:
			if c.WorkspaceId != sp.WorkspaceID {
				return false
			}
		}
	}
	return true
}

func matchMessage(m *entity.Message, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByChatID:
			if m.ChatId != sp.ChatID {
				return false
			}
		case specification.ByChatIDs:
			found := false
			for _, id := range sp.ChatIDs {
				if m.ChatId == id {
					found = true
				}
			}
			if !found {
				return false
			}
		case specification.ByRole:
			if m.Role != sp.Role {
				return false
			}
		}
	}
	return true
}
