package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

type secretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

type apiKeySource struct {
	client    secretAccessor
	projectID string
	secretID  string
}

// NewAPIKeySource reads the server's default Alpha Vantage key from Secret Manager.
func NewAPIKeySource(client secretAccessor, projectID, secretID string) *apiKeySource {
	return &apiKeySource{client: client, projectID: projectID, secretID: secretID}
}

func (s *apiKeySource) secretName() string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID)
}

func (s *apiKeySource) APIKey(ctx context.Context) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName()),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError(fmt.Sprintf("secret %s not found", s.secretID))
		}
		return "", errs.NewDatabaseError("read", "failed to access api key secret", err)
	}
	return string(res.Payload.Data), nil
}
