package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	ManagementResource = "https://management.azure.com"
	ManagementScope    = ManagementResource + "/.default"
)

// Token is a bearer credential with the absolute expiry advertised by the identity provider.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// Exchanger performs one client-credentials exchange against an identity provider.
type Exchanger interface {
	Exchange(ctx context.Context) (Token, error)
}

type ClientCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

type clientSecretExchanger struct {
	cred  azcore.TokenCredential
	scope string
}

func NewClientSecretExchanger(creds ClientCredentials) (Exchanger, error) {
	cred, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client secret credential: %w", err)
	}
	return &clientSecretExchanger{cred: cred, scope: ManagementScope}, nil
}

func (e *clientSecretExchanger) Exchange(ctx context.Context) (Token, error) {
	tok, err := e.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{e.scope}})
	if err != nil {
		return Token{}, err
	}
	return Token{Value: tok.Token, ExpiresOn: tok.ExpiresOn}, nil
}

type oauth2Exchanger struct {
	cfg *clientcredentials.Config
}

// NewOAuth2Exchanger talks to an explicit token endpoint, e.g. the v1
// https://login.microsoftonline.com/{tenant}/oauth2/token grant that expects
// a resource parameter instead of a scope.
func NewOAuth2Exchanger(creds ClientCredentials, tokenURL string) Exchanger {
	return &oauth2Exchanger{
		cfg: &clientcredentials.Config{
			ClientID:       creds.ClientID,
			ClientSecret:   creds.ClientSecret,
			TokenURL:       tokenURL,
			EndpointParams: url.Values{"resource": {ManagementResource}},
			AuthStyle:      oauth2.AuthStyleInParams,
		},
	}
}

func (e *oauth2Exchanger) Exchange(ctx context.Context) (Token, error) {
	tok, err := e.cfg.Token(ctx)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}
