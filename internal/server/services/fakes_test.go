package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/dbx"
	"github.com/dmitrijs2005/boardingpass/internal/server/discord"
	"github.com/dmitrijs2005/boardingpass/internal/server/models"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/members"
	"github.com/dmitrijs2005/boardingpass/internal/server/twitter"
)

// --- members ---

type fakeMembers struct {
	mu      sync.Mutex
	members []*models.Member
	err     error
}

func (f *fakeMembers) find(match func(m *models.Member) bool) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.members {
		if match(m) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMembers) byID(id string) *models.Member {
	for _, m := range f.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeMembers) Create(_ context.Context, m *models.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := *m
	f.members = append(f.members, &cp)
	return nil
}

func (f *fakeMembers) FindByHandles(_ context.Context, tw, dc string) (*models.Member, error) {
	return f.find(func(m *models.Member) bool {
		return (tw != "" && m.Twitter == tw) || (dc != "" && m.Discord == dc)
	})
}

func (f *fakeMembers) FindByTwitterID(_ context.Context, id string) (*models.Member, error) {
	return f.find(func(m *models.Member) bool { return id != "" && m.TwitterID == id })
}

func (f *fakeMembers) FindByTwitter(_ context.Context, tw string) (*models.Member, error) {
	return f.find(func(m *models.Member) bool { return tw != "" && m.Twitter == tw })
}

func (f *fakeMembers) FindByAddress(_ context.Context, addr string) (*models.Member, error) {
	return f.find(func(m *models.Member) bool { return addr != "" && m.Address == addr })
}

func (f *fakeMembers) UpdateProfile(_ context.Context, m *models.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.byID(m.ID)
	if stored == nil {
		return common.ErrorNotFound
	}
	stored.Twitter, stored.TwitterID = m.Twitter, m.TwitterID
	stored.Discord, stored.DiscordID = m.Discord, m.DiscordID
	return nil
}

func (f *fakeMembers) UpdateHandles(_ context.Context, m *models.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	stored := f.byID(m.ID)
	if stored == nil {
		return common.ErrorNotFound
	}
	stored.Twitter, stored.Discord, stored.Project = m.Twitter, m.Discord, m.Project
	return nil
}

func (f *fakeMembers) SetAddress(_ context.Context, id, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.byID(id)
	if stored == nil {
		return common.ErrorNotFound
	}
	stored.Address = address
	return nil
}

type fakeRepoManager struct {
	members *fakeMembers
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Members(dbx.DBTX) members.Repository { return f.members }

// --- providers ---

type fakeDiscord struct {
	exchangeErr, refreshErr, meErr, grantErr error
	me                                       discord.Identity
	granted                                  []string
}

func (f *fakeDiscord) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "at-" + code, RefreshToken: "rt-" + code}, nil
}

func (f *fakeDiscord) Refresh(_ context.Context, rt string) (*oauth2.Token, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &oauth2.Token{AccessToken: "at", RefreshToken: rt}, nil
}

func (f *fakeDiscord) Me(context.Context, string) (*discord.Identity, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	id := f.me
	return &id, nil
}

func (f *fakeDiscord) GrantRole(_ context.Context, userID string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.granted = append(f.granted, userID)
	return nil
}

type fakeTwitter struct {
	authErr, accessErr, lookupErr error
	identity                      twitter.Identity
	usernames                     map[string]string
}

func (f *fakeTwitter) AuthURL(context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "https://api.twitter.com/oauth/authenticate?oauth_token=req", nil
}

func (f *fakeTwitter) AccessToken(context.Context, string, string) (*twitter.Identity, error) {
	if f.accessErr != nil {
		return nil, f.accessErr
	}
	id := f.identity
	return &id, nil
}

func (f *fakeTwitter) Username(_ context.Context, id string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	return f.usernames[id], nil
}

func (f *fakeTwitter) ProfileImageURL(_ context.Context, username string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	return "https://pbs/" + username + "_400x400.jpg", nil
}

type fakeRenderer struct {
	err  error
	args []string
}

func (f *fakeRenderer) Render(_ context.Context, username, project, avatarURL string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.args = []string{username, project, avatarURL}
	return []byte("png"), nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
