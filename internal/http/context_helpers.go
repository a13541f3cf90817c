package httpx

import (
	"context"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
)

// profileKey is an unexported context key type to avoid collisions across packages.
type profileKey struct{}

// WithProfile returns a child context carrying the signed-in admin's profile.
// A nil profile returns ctx unchanged.
func WithProfile(ctx context.Context, p *domainauth.UserProfile) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns the profile stored by the page guard.
func ProfileFromContext(ctx context.Context) (*domainauth.UserProfile, bool) {
	p, ok := ctx.Value(profileKey{}).(*domainauth.UserProfile)
	return p, ok && p != nil
}

// routeLabel is filled in by the mux handler so outer middleware can label metrics.
type routeLabel struct{ pattern string }

type routeLabelKey struct{}

func withRouteLabel(ctx context.Context) (context.Context, *routeLabel) {
	l := &routeLabel{}
	return context.WithValue(ctx, routeLabelKey{}, l), l
}

func setRouteLabel(ctx context.Context, pattern string) {
	if l, ok := ctx.Value(routeLabelKey{}).(*routeLabel); ok {
		l.pattern = pattern
	}
}
