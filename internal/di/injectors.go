//go:build wireinject
// +build wireinject

package di

import (
	"daybook/internal/agent"
	"daybook/internal/config"
	"daybook/internal/store"

	wire "github.com/google/wire"
)

func InitApp(cfg *config.Config) (*App, error) {

	wire.Build(
		provideLogger,
		provideDB,
		provideMetrics,
		store.New,

		provideCalendar,
		provideMessenger,
		agent.New,
		provideDigest,

		provideOrchestrator,
		provideBot,
		provideSessions,
		provideAuthenticator,
		provideRouter,
		NewApp,
	)

	return nil, nil
}
