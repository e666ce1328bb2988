package aws

import (
	"context"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsClient_DisabledIsNoop(t *testing.T) {
	m := NewMetricsClient(sdkaws.Config{Region: "ap-southeast-1"}, "", false)

	assert.False(t, m.IsEnabled())
	assert.Equal(t, defaultNamespace, m.namespace)
	assert.NoError(t, m.RecordCount(context.Background(), MetricOrdersCreated, nil))
	assert.NoError(t, m.RecordLatency(context.Background(), MetricHTTPLatency, time.Second, nil))
}

func TestMetricsClient_NilIsNoop(t *testing.T) {
	var m *MetricsClient

	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.RecordCount(context.Background(), MetricHTTPRequests, map[string]string{"route": "/orders"}))
}

func TestSNSClient_RejectsEmptyTopic(t *testing.T) {
	s := NewSNSClient(sdkaws.Config{Region: "ap-southeast-1"})

	err := s.Publish(context.Background(), "", []byte(`{}`))

	assert.EqualError(t, err, "empty topicArn")
}

func TestLoadAWSConfig_Endpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := LoadAWSConfig(context.Background(), "ap-southeast-1", "http://localhost:4566")

	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)
}
