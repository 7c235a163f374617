package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"topproducts/internal/api/handlers"
	"topproducts/internal/api/utils"
	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
	"topproducts/internal/logger"
	"topproducts/internal/secrets"
	"topproducts/internal/topfive"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

type app struct {
	svc *topfive.Service
}

func (a *app) handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if m := req.RequestContext.HTTP.Method; m != "" && m != http.MethodGet {
		return jsonResp(http.StatusMethodNotAllowed, utils.ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
	}

	result, err := a.svc.Run(ctx)
	if err != nil {
		status, message, code := handlers.RunErrorResponse(err)
		return jsonResp(status, utils.ErrorResponse{Error: message, Code: code})
	}
	return jsonResp(http.StatusOK, result)
}

func jsonResp(status int, payload any) (events.APIGatewayV2HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type": "application/json",
		},
		Body: string(body),
	}, nil
}

func main() {
	logSvc := logger.NewStderr()

	cfg, err := config.LoadOrDefault()
	if err != nil {
		logSvc.Error("failed to load config", err)
		os.Exit(1)
	}

	resolver, err := secrets.NewSSMResolver(context.Background())
	if err != nil {
		logSvc.Error("aws config init failed", err)
		os.Exit(1)
	}

	svc := topfive.New(topfive.Deps{
		Lookup:       os.LookupEnv,
		Resolve:      resolver.ResolveSettings,
		Tokens:       &identity.Lazy{ClientID: os.Getenv(config.EnvManagedIdentityID)},
		DB:           db.OptionsFromConfig(cfg),
		QueryTimeout: cfg.DB.QueryTimeout,
		Logger:       logSvc,
	})

	a := &app{svc: svc}
	lambda.Start(a.handler)
}
