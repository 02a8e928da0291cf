package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"go.uber.org/zap"

	"github.com/initify/identity-context/internal/app"
)

func main() {
	srv, err := app.ServerFromEnv()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("config error", zap.Error(err))
	}
	adapter := httpadapter.NewV2(app.NewRouterWithServer(srv))
	lambda.Start(adapter.ProxyWithContext)
}
