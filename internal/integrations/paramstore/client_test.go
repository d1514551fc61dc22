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
	getOut   *ssm.GetParameterOutput
	getErr   error
	lastName string
	lastDec  bool
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if in.Name != nil {
		f.lastName = *in.Name
	}
	if in.WithDecryption != nil {
		f.lastDec = *in.WithDecryption
	}
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func mustNew(t *testing.T, api ssmAPI) *Client {
	t.Helper()
	client, err := New(api, "/language-learner/")
	require.NoError(t, err)
	return client
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"token":"v"}`), Type: types.ParameterTypeSecureString,
	}}}
	client := mustNew(t, api)
	v, err := client.GetParameter(context.Background(), "openai-token")
	require.NoError(t, err)
	require.Equal(t, `{"token":"v"}`, v)
	require.Equal(t, "/language-learner/openai-token", api.lastName)
	require.True(t, api.lastDec)
}

func TestGetParameter_AbsoluteName(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: strPtr("v")}}}
	client := mustNew(t, api)
	_, err := client.GetParameter(context.Background(), "/shared/gemini-token")
	require.NoError(t, err)
	require.Equal(t, "/shared/gemini-token", api.lastName)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client := mustNew(t, api)
	_, err := client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	client := mustNew(t, &fakeAPI{getErr: errors.New("boom")})
	_, err := client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client := mustNew(t, &fakeAPI{})
	_, err := client.GetParameter(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "/p")
	require.ErrorContains(t, err, "must not be nil")

	_, err = New(&fakeAPI{}, " / ")
	require.ErrorContains(t, err, "prefix")
}

func TestStatic(t *testing.T) {
	s := Static{"openai-token": "sk-local", "empty": ""}
	v, err := s.GetParameter(context.Background(), "openai-token")
	require.NoError(t, err)
	require.Equal(t, "sk-local", v)

	_, err = s.GetParameter(context.Background(), "empty")
	require.Error(t, err)
	_, err = s.GetParameter(context.Background(), "missing")
	require.Error(t, err)
}
