// Package mocks provides gomock implementations of the ports interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	idp := mocks.NewMockIdentityService(ctrl)
//	idp.EXPECT().CurrentUser(gomock.Any(), gomock.Any()).Return(nil, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_service_mock.go github.com/mpo-id/portal/internal/ports IdentityService
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_store_mock.go github.com/mpo-id/portal/internal/ports ProfileStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/mpo-id/portal/internal/ports SessionStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/mpo-id/portal/internal/ports CredentialStore

// Content repositories used by the content, dashboard and game services.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=post_repository_mock.go github.com/mpo-id/portal/internal/ports PostRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/mpo-id/portal/internal/ports EventRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=publication_repository_mock.go github.com/mpo-id/portal/internal/ports PublicationRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=game_score_repository_mock.go github.com/mpo-id/portal/internal/ports GameScoreRepository
