package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		valued   []string
		switches []string
		want     []string
	}{
		{
			name:   "short flag with separate value",
			args:   []string{"-c", "conf.json", "-a", "localhost"},
			valued: []string{"-c", "--config"},
			want:   []string{"-c", "conf.json"},
		},
		{
			name:   "long flag with equals",
			args:   []string{"--config=alt.json", "-a", "localhost"},
			valued: []string{"-c", "--config"},
			want:   []string{"--config=alt.json"},
		},
		{
			name:   "unknown flags ignored",
			args:   []string{"-x", "1", "--y=2", "positional"},
			valued: []string{"-c"},
			want:   []string{},
		},
		{
			name:   "flag followed by another flag keeps no value",
			args:   []string{"-d", "-s", "memory"},
			valued: []string{"-d", "-s"},
			want:   []string{"-d", "-s", "memory"},
		},
		{
			name:     "switch does not swallow the next token",
			args:     []string{"-dev", "positional", "-d", "/data"},
			valued:   []string{"-d"},
			switches: []string{"-dev"},
			want:     []string{"-dev", "-d", "/data"},
		},
		{
			name:     "switch with explicit value",
			args:     []string{"-sim=false"},
			switches: []string{"-sim"},
			want:     []string{"-sim=false"},
		},
		{
			name:   "repeated flag preserved in order",
			args:   []string{"-c", "one.json", "-c", "two.json"},
			valued: []string{"-c"},
			want:   []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:   "empty args",
			args:   []string{},
			valued: []string{"-c"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.valued, tt.switches...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigPath([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigPath([]string{"-config", "/path/long.json"}))
	assert.Equal(t, "/path/eq.json", ConfigPath([]string{"--config=/path/eq.json", "-d", "x"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1", "-y", "2"}))
	assert.Equal(t, "/path/2.json", ConfigPath([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
}
