package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the minimal AWS SSM interface required by KeySource.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// tokenPayload is the optional JSON shape of the stored key.
type tokenPayload struct {
	Token string `json:"token"`
}

// KeySource reads the Groq API key from a SecureString parameter. A
// successful read is cached for the life of the process; failures are not.
type KeySource struct {
	api  ssmAPI
	name string

	mu     sync.Mutex
	loaded bool
	key    string
}

// NewKeySource returns a KeySource for the named parameter.
func NewKeySource(api ssmAPI, name string) (*KeySource, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: parameter name is required")
	}
	return &KeySource{api: api, name: name}, nil
}

func (s *KeySource) APIKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.key, nil
	}

	raw, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	key, err := decodeKey(raw)
	if err != nil {
		return "", err
	}
	s.key = key
	s.loaded = true
	return key, nil
}

func (s *KeySource) fetch(ctx context.Context) (string, error) {
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", s.name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// decodeKey accepts either a bare key or {"token":"..."}.
func decodeKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("paramstore: API key is empty")
	}
	return raw, nil
}
