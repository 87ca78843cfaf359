package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	calls  int
	lastIn *ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.lastIn = in
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func valueOut(v string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("/groq-relay/api-key"), Value: strPtr(v), Type: types.ParameterTypeSecureString,
	}}
}

func TestNewKeySource_Validates(t *testing.T) {
	_, err := NewKeySource(nil, "/groq-relay/api-key")
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")

	_, err = NewKeySource(&fakeAPI{}, "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestAPIKey_RawValue(t *testing.T) {
	api := &fakeAPI{getOut: valueOut("gsk-raw")}
	src, err := NewKeySource(api, "/groq-relay/api-key")
	require.NoError(t, err)

	key, err := src.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-raw", key)
	require.Equal(t, "/groq-relay/api-key", *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestAPIKey_JSONToken(t *testing.T) {
	src, err := NewKeySource(&fakeAPI{getOut: valueOut(`{"token":"gsk-json"}`)}, "/groq-relay/api-key")
	require.NoError(t, err)

	key, err := src.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-json", key)
}

func TestAPIKey_CachedAfterFirstSuccess(t *testing.T) {
	api := &fakeAPI{getOut: valueOut("gsk-raw")}
	src, err := NewKeySource(api, "/groq-relay/api-key")
	require.NoError(t, err)

	_, err = src.APIKey(context.Background())
	require.NoError(t, err)
	_, _ = src.APIKey(context.Background())
	_, _ = src.APIKey(context.Background())
	require.Equal(t, 1, api.calls, "SSM must only be called once per process lifetime")
}

func TestAPIKey_FailureIsNotCached(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	src, err := NewKeySource(api, "/groq-relay/api-key")
	require.NoError(t, err)

	_, err = src.APIKey(context.Background())
	require.ErrorContains(t, err, "boom")

	api.getErr = nil
	api.getOut = valueOut("gsk-raw")
	key, err := src.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gsk-raw", key)
	require.Equal(t, 2, api.calls)
}

func TestAPIKey_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	src, err := NewKeySource(api, "p")
	require.NoError(t, err)
	_, err = src.APIKey(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestDecodeKey(t *testing.T) {
	key, err := decodeKey("  gsk-raw \n")
	require.NoError(t, err)
	require.Equal(t, "gsk-raw", key)

	_, err = decodeKey(`{"other":"value"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key is empty")

	_, err = decodeKey(`{"broken`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")

	_, err = decodeKey("")
	require.Error(t, err)
}
