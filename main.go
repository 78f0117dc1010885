package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/obfuscator/censor"
	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/gologger"
	"github.com/danthegoodman1/obfuscator/http_server"
	"github.com/danthegoodman1/obfuscator/obfuscator"
	"github.com/danthegoodman1/obfuscator/s3_helper"
	"github.com/danthegoodman1/obfuscator/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting obfuscator")

	policy, err := censor.ParsePolicy(utils.MISSING_FIELD_POLICY)
	if err != nil {
		logger.Error().Err(err).Msg("invalid MISSING_FIELD_POLICY")
		os.Exit(1)
	}

	store, err := buildDataStore()
	if err != nil {
		logger.Error().Err(err).Msg("error building data store")
		os.Exit(1)
	}

	o := obfuscator.New(obfuscator.Config{
		Store:         store,
		MissingFields: policy,
	})

	httpServer := http_server.StartHTTPServer(o, store.Schemes())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
}

func buildDataStore() (*datastore.SchemeRouter, error) {
	s3Store, err := s3_helper.NewS3DataStore(s3_helper.S3Config{
		Region:          utils.AWS_DEFAULT_REGION,
		Endpoint:        utils.S3_ENDPOINT,
		ForcePathStyle:  utils.S3_FORCE_PATH_STYLE,
		AccessKeyID:     utils.AWS_ACCESS_KEY_ID,
		SecretAccessKey: utils.AWS_SECRET_ACCESS_KEY,
		SessionToken:    utils.AWS_SESSION_TOKEN,
	})
	if err != nil {
		return nil, fmt.Errorf("error in NewS3DataStore: %w", err)
	}
	router := datastore.NewSchemeRouter().Register("s3", s3Store)

	if utils.LOCAL_STORE_ROOT != "" {
		disk, err := datastore.NewDiskDataStore(utils.LOCAL_STORE_ROOT)
		if err != nil {
			return nil, fmt.Errorf("error in NewDiskDataStore: %w", err)
		}
		router.Register("file", disk)
	}
	return router, nil
}
