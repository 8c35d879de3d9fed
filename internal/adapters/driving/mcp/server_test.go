package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil pipeline service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingPipelineService)
	})

	t.Run("pipeline only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Pipeline: &mockPipelineService{}}, "1.2.3")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports creates server", func(t *testing.T) {
		ports := &Ports{
			Pipeline:  &mockPipelineService{},
			Templates: &mockTemplateService{},
			History:   &mockHistoryService{},
		}
		server, err := NewServer(ports, "")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingPipelineService)
	assert.ErrorIs(t, (&Ports{History: &mockHistoryService{}}).Validate(), ErrMissingPipelineService)
	assert.NoError(t, (&Ports{Pipeline: &mockPipelineService{}}).Validate())
}
