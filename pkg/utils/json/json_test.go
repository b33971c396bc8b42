package json

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := sample{Name: "דחוף", Score: 0.87, Tags: []string{"a", "b"}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshal_UnicodePreserved(t *testing.T) {
	data, err := Marshal(map[string]string{"city": "תל אביב"})
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "תל אביב", out["city"])
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(sample{Name: "x", Score: 1}))

	var out sample
	require.NoError(t, NewDecoder(strings.NewReader(buf.String())).Decode(&out))
	assert.Equal(t, "x", out.Name)
}

func TestUnmarshal_InvalidInput(t *testing.T) {
	var out sample
	assert.Error(t, Unmarshal([]byte(`{bad`), &out))
}

func TestIsUsingSonic(t *testing.T) {
	arch := runtime.GOARCH
	if arch == "amd64" || arch == "arm64" {
		assert.True(t, IsUsingSonic())
	} else {
		assert.False(t, IsUsingSonic())
	}
}

func TestConfigModeSwitch(t *testing.T) {
	defer ConfigStandardMode()
	ConfigFastestMode()

	data, err := Marshal(sample{Name: "fast", Score: 2})
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "fast", out.Name)
}
