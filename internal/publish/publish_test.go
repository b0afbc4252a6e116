package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) EnsureProject(ctx context.Context, name, parent string) error {
	return m.Called(ctx, name, parent).Error(0)
}

func (m *mockClient) EnsureParameter(ctx context.Context, project string, p Parameter) error {
	return m.Called(ctx, project, p).Error(0)
}

func (m *mockClient) EnsureValue(ctx context.Context, project, param, env, value string) error {
	return m.Called(ctx, project, param, env, value).Error(0)
}

func (m *mockClient) EnsureTemplate(ctx context.Context, project, name, body string) error {
	return m.Called(ctx, project, name, body).Error(0)
}

func sampleCatalog() *catalog.Catalog {
	cat := catalog.New()

	port := &catalog.Parameter{ParamName: "port", Type: catalog.TypeInteger}
	port.Values.Set("default", int64(80))
	port.Values.Set("production", int64(443))
	cat.Put("[port]", port)

	token := &catalog.Parameter{ParamName: "api_token", Type: catalog.TypeNull, Secret: true}
	token.Values.Set("default", nil)
	token.Values.Set("production", "s3cr3t")
	token.Values.Set("staging", "")
	cat.Put("[api_token]", token)

	greeting := &catalog.Parameter{ParamName: "greeting", Type: catalog.TypeTemplate}
	greeting.Values.Set("default", "hi {{ name }}")
	cat.Put("[greeting]", greeting)
	return cat
}

func TestPublish(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	c := &mockClient{}
	c.On("EnsureProject", ctx, "api", "platform").Return(nil).Once()
	c.On("EnsureParameter", ctx, "api", Parameter{Name: "port", Type: catalog.TypeInteger}).Return(nil).Once()
	c.On("EnsureValue", ctx, "api", "port", "default", "80").Return(nil).Once()
	c.On("EnsureValue", ctx, "api", "port", "production", "443").Return(nil).Once()
	c.On("EnsureParameter", ctx, "api", Parameter{Name: "api_token", Type: catalog.TypeString, Secret: true}).Return(nil).Once()
	c.On("EnsureValue", ctx, "api", "api_token", "production", "s3cr3t").Return(nil).Once()
	c.On("EnsureParameter", ctx, "api", Parameter{Name: "greeting", Type: catalog.TypeString}).Return(nil).Once()
	c.On("EnsureValue", ctx, "api", "greeting", "default", "hi {{ name }}").Return(nil).Once()
	c.On("EnsureTemplate", ctx, "api", "api-json.cttemplate", "{}").Return(nil).Once()

	// --- Act ---
	err := Publish(ctx, c, "platform/api", "api-json.cttemplate", "{}", sampleCatalog())

	// --- Assert ---
	require.NoError(t, err)
	c.AssertExpectations(t)
	c.AssertNotCalled(t, "EnsureValue", ctx, "api", "api_token", "default", mock.Anything)
	c.AssertNotCalled(t, "EnsureValue", ctx, "api", "api_token", "staging", mock.Anything)
}

func TestPublish_StopsOnClientError(t *testing.T) {
	ctx := context.Background()
	c := &mockClient{}
	boom := errors.New("boom")
	c.On("EnsureParameter", ctx, "svc", mock.Anything).Return(boom).Once()

	err := Publish(ctx, c, "svc", "t", "", sampleCatalog())

	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `failed to ensure parameter "port"`)
	c.AssertNotCalled(t, "EnsureTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecorder_MasksSecrets(t *testing.T) {
	r := &Recorder{}

	err := Publish(context.Background(), r, "svc", "svc-json.cttemplate", "{}", sampleCatalog())
	require.NoError(t, err)

	var lines []string
	for _, op := range r.Operations() {
		lines = append(lines, op.String())
	}
	assert.Equal(t, []string{
		"parameter svc/port: integer",
		"value svc/port@default: 80",
		"value svc/port@production: 443",
		"parameter svc/api_token: string secret",
		"value svc/api_token@production: *****",
		"parameter svc/greeting: string",
		"value svc/greeting@default: hi {{ name }}",
		"template svc/svc-json.cttemplate: 2 bytes",
	}, lines)
}

func TestValueText(t *testing.T) {
	text, ok, err := valueText(map[string]any{"a": int64(1)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, text)

	_, ok, err = valueText(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	text, ok, _ = valueText(false)
	assert.True(t, ok)
	assert.Equal(t, "false", text)
}
