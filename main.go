package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/example/omie-order-concierge/concierge/contract"
	"github.com/example/omie-order-concierge/concierge/directory"
	"github.com/example/omie-order-concierge/concierge/history"
	"github.com/example/omie-order-concierge/concierge/httpapi"
	llmx "github.com/example/omie-order-concierge/concierge/llm"
	"github.com/example/omie-order-concierge/concierge/nlquery"
	omiex "github.com/example/omie-order-concierge/concierge/omie"
	"github.com/example/omie-order-concierge/concierge/orders"
	"github.com/example/omie-order-concierge/concierge/pipeline"
	"github.com/example/omie-order-concierge/concierge/resolver"
	configx "github.com/example/omie-order-concierge/pkg/config"
	_ "github.com/example/omie-order-concierge/pkg/logger/autoload"
)

type AppConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" split_words:"true" default:":8080"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	omieCfg := configx.MustNew[omiex.Config]("OMIE")
	llmCfg := configx.MustNew[llmx.Config]("GENAI")

	omieClient := omiex.MustNew(*omieCfg)

	res, err := resolver.New(directory.New(omieClient))
	if err != nil {
		log.Fatal().Err(err).Msg("build customer resolver")
	}
	ret, err := history.New(orders.New(omieClient))
	if err != nil {
		log.Fatal().Err(err).Msg("build order retriever")
	}

	var (
		extractor contractx.CriteriaExtractor
		composer  contractx.AnswerComposer
	)
	if llmCfg.Enabled() {
		extractor, composer, err = nlquery.New(ctx, *llmCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("build language model stages")
		}
	} else {
		log.Warn().Msg("no language model api key configured, question answering disabled")
	}

	service, err := pipeline.New(res, ret, extractor, composer)
	if err != nil {
		log.Fatal().Err(err).Msg("build pipeline")
	}

	server, err := httpapi.NewServer(service)
	if err != nil {
		log.Fatal().Err(err).Msg("build http server")
	}

	httpServer := &http.Server{
		Addr:              appCfg.ListenAddr,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", appCfg.ListenAddr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
