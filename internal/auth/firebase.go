package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// NewFirebaseApp initializes the Firebase Admin SDK. An empty credentials
// file falls back to application default credentials.
func NewFirebaseApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// FirebaseResolver verifies Firebase ID tokens
type FirebaseResolver struct {
	client *fbauth.Client
}

// NewFirebaseResolver creates a resolver from an initialized Firebase app
func NewFirebaseResolver(ctx context.Context, app *firebase.App) (*FirebaseResolver, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	return &FirebaseResolver{client: client}, nil
}

// ResolveIdentity verifies the ID token and returns the Firebase UID
func (f *FirebaseResolver) ResolveIdentity(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token required: %w", ErrUnauthorized)
	}
	verified, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to verify id token: %v: %w", err, ErrUnauthorized)
	}
	return verified.UID, nil
}
