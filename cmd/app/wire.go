//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/nutrient-tracker/internal/bootstrap"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/recommend"
	"github.com/yanqian/nutrient-tracker/internal/domain/tracker"
	"github.com/yanqian/nutrient-tracker/internal/infra/config"
	httpiface "github.com/yanqian/nutrient-tracker/internal/interface/http"
	"github.com/yanqian/nutrient-tracker/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRecommendConfig,
		provideTrackerConfig,
		provideChatClient,
		provideNutrientTable,
		provideMealStore,
		provideLedgerStore,
		provideStoreCloser,
		nutrient.NewResolver,
		recommend.NewTokenCounter,
		recommend.NewService,
		tracker.NewManager,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
