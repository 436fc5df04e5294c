package client

import (
	"context"

	"github.com/dmitrijs2005/boardingpass/internal/api"
)

type Client interface {
	Ping(ctx context.Context) error
	// TwitterAuthURL returns the URL for step one of Twitter OAuth.
	TwitterAuthURL(ctx context.Context) (string, error)
	Verify(ctx context.Context, req api.VerifyRequest) (*api.VerifyResponse, error)
	Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error)
	AllowListed(ctx context.Context, address string) (*api.AllowListResponse, error)
	// ClaimURL builds the download link for a boarding pass. It does no I/O.
	ClaimURL(username string) string
}
