package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

const tokenParam = "/listing-writer/openrouter-token"

type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	lastIn *ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func withValue(v *string) *fakeAPI {
	return &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name:  strPtr(tokenParam),
		Type:  types.ParameterTypeSecureString,
		Value: v,
	}}}
}

func mustNew(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	c, err := New(api)
	require.NoError(t, err)
	return c
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestGetToken_HappyPath(t *testing.T) {
	api := withValue(strPtr(`{"token":" sk-or-123 "}`))
	tok, err := mustNew(t, api).GetToken(context.Background(), " "+tokenParam+" ")
	require.NoError(t, err)
	require.Equal(t, "sk-or-123", tok)
	require.Equal(t, tokenParam, *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestGetToken_MissingTokenField(t *testing.T) {
	_, err := mustNew(t, withValue(strPtr(`{"other":"value"}`))).GetToken(context.Background(), tokenParam)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is empty")
}

func TestGetToken_MalformedJSON(t *testing.T) {
	_, err := mustNew(t, withValue(strPtr(`{"broken`))).GetToken(context.Background(), tokenParam)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
}

func TestGetToken_MissingValue(t *testing.T) {
	_, err := mustNew(t, withValue(nil)).GetToken(context.Background(), tokenParam)
	require.Error(t, err)
	require.Contains(t, err.Error(), "has no value")
}

func TestGetToken_ApiError(t *testing.T) {
	_, err := mustNew(t, &fakeAPI{getErr: errors.New("ssm unavailable")}).GetToken(context.Background(), tokenParam)
	require.ErrorContains(t, err, "ssm unavailable")
}

func TestGetToken_EmptyName(t *testing.T) {
	api := &fakeAPI{}
	_, err := mustNew(t, api).GetToken(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
	require.Nil(t, api.lastIn)
}

func TestGetToken_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetToken(context.Background(), tokenParam)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}
