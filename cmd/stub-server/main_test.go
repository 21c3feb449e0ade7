package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"translateapp/internal/config"
	"translateapp/internal/di"
	"translateapp/internal/serviceinterfaces"
	"translateapp/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplication_ServesTranslations(t *testing.T) {
	container := di.NewServiceContainer(config.Default(), nil,
		di.WithTranslationClient(services.NewGlossaryTranslationClient()))
	require.NoError(t, container.Initialize(context.Background()))

	app, err := NewApplication(container)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/translate?sl=en&dl=ru&text=hello")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result serviceinterfaces.TranslationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "привет", result.DestinationText)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NoError(t, app.Shutdown(context.Background()))
}

func TestApplication_RequiresInitializedContainer(t *testing.T) {
	container := di.NewServiceContainer(config.Default(), nil)

	_, err := NewApplication(container)
	assert.Error(t, err)
}
