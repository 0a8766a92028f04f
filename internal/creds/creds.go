// Package creds acquires L2 API trading credentials. Acquisition is
// best-effort: the execution client must come up unauthenticated rather
// than fail startup when the venue is unreachable.
package creds

import (
	"context"

	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
)

// Provider creates or derives API credentials. Two implementations exist:
// HTTPProvider against the CLOB REST API, and StaticProvider for tests.
type Provider interface {
	Create(ctx context.Context) (model.APICredentials, error)
	Derive(ctx context.Context) (model.APICredentials, error)
}

// Acquire tries creation first, falls back to derivation when creation
// yields no key, and degrades to empty credentials on any error.
func Acquire(ctx context.Context, p Provider) model.APICredentials {
	creds, err := p.Create(ctx)
	if err == nil && creds.Empty() {
		creds, err = p.Derive(ctx)
	}
	if err != nil {
		logger.Error("Failed to create/derive API credentials, continuing unauthenticated", "error", err)
		return model.APICredentials{}
	}
	return creds
}

// StaticProvider returns canned results.
type StaticProvider struct {
	CreateCreds model.APICredentials
	CreateErr   error
	DeriveCreds model.APICredentials
	DeriveErr   error
}

func (s *StaticProvider) Create(context.Context) (model.APICredentials, error) {
	return s.CreateCreds, s.CreateErr
}

func (s *StaticProvider) Derive(context.Context) (model.APICredentials, error) {
	return s.DeriveCreds, s.DeriveErr
}
