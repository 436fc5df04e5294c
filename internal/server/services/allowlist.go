package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/boardingpass/internal/api"
	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/ethaddr"
	"github.com/dmitrijs2005/boardingpass/internal/logging"
	"github.com/dmitrijs2005/boardingpass/internal/server/discord"
	"github.com/dmitrijs2005/boardingpass/internal/server/metrics"
	"github.com/dmitrijs2005/boardingpass/internal/server/models"
	"github.com/dmitrijs2005/boardingpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/boardingpass/internal/server/twitter"
)

// PassRenderer draws a boarding pass as PNG.
type PassRenderer interface {
	Render(ctx context.Context, username, project, avatarURL string) ([]byte, error)
}

// Pass is a rendered boarding pass ready for download.
type Pass struct {
	Filename string
	PNG      []byte
}

// AllowListService implements the backend endpoints.
//
// Rejections the caller should see as HTTP 400 are *RequestError values;
// outcomes the client renders itself come back as success=false responses
// with a nil error. Anything else is an internal failure.
type AllowListService interface {
	TwitterAuthURL(ctx context.Context) (string, error)
	Verify(ctx context.Context, req api.VerifyRequest) (*api.VerifyResponse, error)
	Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error)
	AllowListed(ctx context.Context, address string) (*api.AllowListResponse, error)
	Claim(ctx context.Context, username string) (*Pass, error)
	Ping(ctx context.Context) error
}

type allowListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	discord     discord.Client
	twitter     twitter.Client
	passes      PassRenderer
	logger      logging.Logger
}

func NewAllowListService(db *sql.DB, m repomanager.RepositoryManager, d discord.Client, t twitter.Client,
	p PassRenderer, logger logging.Logger) AllowListService {
	return &allowListService{db: db, repomanager: m, discord: d, twitter: t, passes: p, logger: logger}
}

func record(op string, err *error, rejected func() bool) {
	switch {
	case *err != nil:
		var re *RequestError
		if errors.As(*err, &re) {
			metrics.Outcome(op, metrics.ResultRejected)
		} else {
			metrics.Outcome(op, metrics.ResultError)
		}
	case rejected():
		metrics.Outcome(op, metrics.ResultRejected)
	default:
		metrics.Outcome(op, metrics.ResultOK)
	}
}

func (s *allowListService) Ping(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	metrics.UpdateDatabaseAvailability(err)
	return err
}

func (s *allowListService) TwitterAuthURL(ctx context.Context) (string, error) {
	u, err := s.twitter.AuthURL(ctx)
	if err != nil {
		s.logger.Warn(ctx, "twitter request token failed", "error", err)
		return "", reject(MsgTwitterAuthFailed, err)
	}
	return u, nil
}

func (s *allowListService) Verify(ctx context.Context, req api.VerifyRequest) (resp *api.VerifyResponse, err error) {
	defer record("verify", &err, func() bool { return !resp.Success })

	if req.DiscordCode == "" || req.TwitterToken == "" || req.TwitterVerifier == "" {
		return nil, reject(MsgInvalidPayload, common.ErrorValidation)
	}

	tok, err := s.discord.Exchange(ctx, req.DiscordCode)
	if err != nil {
		return nil, reject(MsgDiscordOAuthFailed, err)
	}

	me, err := s.discord.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, reject(MsgDiscordLookupFailed, err)
	}

	tw, err := s.twitter.AccessToken(ctx, req.TwitterToken, req.TwitterVerifier)
	if err != nil {
		return nil, reject(MsgTwitterAccessFailed, err)
	}

	repo := s.repomanager.Members(s.db)

	member, err := repo.FindByHandles(ctx, tw.Username, me.Username)
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Info(ctx, "verification rejected", "twitter", tw.Username, "discord", me.Username)
		return &api.VerifyResponse{Success: false, Message: MsgNotAllowListed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}

	if member.HasAddress() {
		return &api.VerifyResponse{Success: false, Message: MsgAlreadySubmitted}, nil
	}

	member.Discord, member.DiscordID = me.Username, me.ID
	member.Twitter, member.TwitterID = tw.Username, tw.ID
	if err := repo.UpdateProfile(ctx, member); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info(ctx, "member verified", "member", member.ID, "twitter", tw.Username)

	return &api.VerifyResponse{
		Success: true,
		Discord: &api.DiscordProfile{Username: me.Username, RefreshToken: tok.RefreshToken},
		Twitter: &api.TwitterProfile{Username: tw.Username, ID: tw.ID},
	}, nil
}

func (s *allowListService) Submit(ctx context.Context, req api.SubmitRequest) (resp *api.SubmitResponse, err error) {
	defer record("submit", &err, func() bool { return !resp.Success })

	if req.DiscordRefresh == "" || req.TwitterID == "" || req.WalletAddress == "" {
		return nil, reject(MsgInvalidPayload, common.ErrorValidation)
	}

	address, cerr := ethaddr.Checksum(req.WalletAddress)
	if cerr != nil || !ethaddr.IsAddress(req.WalletAddress) {
		return &api.SubmitResponse{Success: false, Message: invalidAddress(req.WalletAddress)}, nil
	}

	tok, err := s.discord.Refresh(ctx, req.DiscordRefresh)
	if err != nil {
		return nil, reject(MsgDiscordOAuthFailed, err)
	}

	me, err := s.discord.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, reject(MsgDiscordLookupFailed, err)
	}

	repo := s.repomanager.Members(s.db)

	member, err := repo.FindByTwitterID(ctx, req.TwitterID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, reject(MsgSneaky, err)
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}

	if me.ID != member.DiscordID || me.Username != member.Discord {
		s.logger.Warn(ctx, "discord mismatch on submit", "member", member.ID)
		return nil, reject(MsgMismatch, ErrMismatch)
	}

	username, err := s.twitter.Username(ctx, req.TwitterID)
	if err != nil {
		return nil, reject(MsgTwitterLookupFailed, err)
	}
	if username != member.Twitter {
		s.logger.Warn(ctx, "twitter mismatch on submit", "member", member.ID)
		return nil, reject(MsgMismatch, ErrMismatch)
	}

	if err := repo.SetAddress(ctx, member.ID, address); err != nil {
		return nil, fmt.Errorf("set address: %w", err)
	}

	if err := s.discord.GrantRole(ctx, member.DiscordID); err != nil {
		s.logger.Error(ctx, "role grant failed", "member", member.ID, "error", err)
		return nil, reject(MsgRoleFailed, err)
	}

	s.logger.Info(ctx, "wallet submitted", "member", member.ID, "address", address)
	return &api.SubmitResponse{Success: true, Message: MsgAddressSubmitted}, nil
}

func (s *allowListService) AllowListed(ctx context.Context, address string) (resp *api.AllowListResponse, err error) {
	defer record("allowlisted", &err, func() bool { return !resp.Success })

	checksummed, cerr := ethaddr.Checksum(address)
	if cerr != nil || !ethaddr.IsAddress(address) {
		return &api.AllowListResponse{Success: false, Message: invalidAddress(address)}, nil
	}

	member, err := s.repomanager.Members(s.db).FindByAddress(ctx, checksummed)
	if errors.Is(err, common.ErrorNotFound) {
		return &api.AllowListResponse{Success: false, Message: MsgAddressNotListed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}

	if !member.ProfilePopulated() {
		return &api.AllowListResponse{Success: false, Message: MsgProfileNotPopulated}, nil
	}

	return &api.AllowListResponse{Success: true, Username: member.Twitter}, nil
}

func (s *allowListService) Claim(ctx context.Context, username string) (pass *Pass, err error) {
	defer record("claim", &err, func() bool { return false })

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, reject(MsgInvalidRequest, common.ErrorValidation)
	}

	member, err := s.repomanager.Members(s.db).FindByTwitter(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, reject(MsgNotAllowListed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}

	avatar, err := s.twitter.ProfileImageURL(ctx, member.Twitter)
	if err != nil {
		return nil, reject(MsgTwitterLookupFailed, err)
	}

	png, err := s.passes.Render(ctx, member.Twitter, member.Project, avatar)
	if err != nil {
		return nil, fmt.Errorf("render pass: %w", err)
	}

	return &Pass{Filename: passFilename(member), PNG: png}, nil
}

func passFilename(m *models.Member) string {
	return "BP_" + m.Twitter + ".png"
}
