package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", "http://localhost:8000", "-x", "1"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://localhost:8000"},
		},
		{
			name:    "equals form",
			args:    []string{"-s=state.db", "-a", "host"},
			allowed: []string{"-s"},
			want:    []string{"-s=state.db"},
		},
		{
			name:    "order preserved",
			args:    []string{"-t", "5", "-s", "x.db", "-z"},
			allowed: []string{"-s", "-t"},
			want:    []string{"-t", "5", "-s", "x.db"},
		},
		{
			name:    "positional arguments dropped",
			args:    []string{"books", "-q", "1"},
			allowed: []string{"-a"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-a"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "value looking like a flag is not consumed",
			args:    []string{"-a", "-t"},
			allowed: []string{"-a"},
			want:    []string{"-a"},
		},
		{
			name:    "empty input",
			args:    nil,
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "cfg.json", ConfigFile([]string{"-a", "x", "-c", "cfg.json"}))
	assert.Equal(t, "cfg.yaml", ConfigFile([]string{"-config=cfg.yaml"}))
	assert.Equal(t, "", ConfigFile([]string{"-a", "x"}))
}
