package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_DefaultValues(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "dev", Commit)
	assert.Equal(t, "unknown", BuildTime)
}

func TestGet(t *testing.T) {
	info := Get("stub-server")
	assert.Equal(t, Info{Service: "stub-server", Version: "dev", Commit: "dev", BuildTime: "unknown"}, info)
}

func TestString(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3 (commit dev, built unknown)", String())
}
