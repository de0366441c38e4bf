package routes_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/model"
	"github.com/dasdy/tapboard/web/components"
	"github.com/dasdy/tapboard/web/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockComponent implements the templ.Component interface for testing.
type MockComponent struct {
	RenderFunc func(ctx context.Context, w io.Writer) error
}

func (m MockComponent) Render(ctx context.Context, w io.Writer) error {
	return m.RenderFunc(ctx, w)
}

func TestSafeRenderTemplate(t *testing.T) {
	t.Run("successful render", func(t *testing.T) {
		mockComponent := MockComponent{
			RenderFunc: func(_ context.Context, w io.Writer) error {
				_, err := w.Write([]byte("Hello, World!"))
				if err != nil {
					return fmt.Errorf("failed to write data: %w", err)
				}

				return nil
			},
		}

		recorder := httptest.NewRecorder()

		err := routes.SafeRenderTemplate(mockComponent, recorder)

		require.NoError(t, err)
		assert.Equal(t, "text/html; charset=UTF-8", recorder.Header().Get("Content-Type"))
		assert.Equal(t, "Hello, World!", recorder.Body.String())
	})

	t.Run("render error", func(t *testing.T) {
		expectedErr := errors.New("render error")
		mockComponent := MockComponent{
			RenderFunc: func(_ context.Context, _ io.Writer) error {
				return expectedErr
			},
		}

		recorder := httptest.NewRecorder()

		err := routes.SafeRenderTemplate(mockComponent, recorder)

		require.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "could not render template")

		// Nothing may be written before rendering is known to succeed
		assert.Empty(t, recorder.Body.String())
	})
}

func TestInitEmptyItems(t *testing.T) {
	t.Run("places keys like the keyboard does", func(t *testing.T) {
		items, width, height := routes.InitEmptyItems(testKeyboards(), model.Lowercase)

		assert.InDelta(t, 240.0, width, 1e-9)
		assert.InDelta(t, 160.0, height, 1e-9)

		require.Len(t, items, 5)

		assert.Equal(t, components.Item{Char: 'a', Label: "a", X: 0, Y: 0, Width: 120, Height: 80}, items[0])
		assert.Equal(t, components.Item{Char: 'b', Label: "b", X: 120, Y: 0, Width: 120, Height: 80}, items[1])
		assert.Equal(t, components.Item{Char: layout.SwitchMarker, Label: "♻", X: 0, Y: 80, Width: 80, Height: 80}, items[2])
		assert.Equal(t, components.Item{Char: 'c', Label: "c", X: 80, Y: 80, Width: 80, Height: 80}, items[3])
		assert.Equal(t, components.Item{Char: layout.Backspace, Label: "Bs", X: 160, Y: 80, Width: 80, Height: 80}, items[4])
	})

	t.Run("uses the requested layout", func(t *testing.T) {
		items, _, _ := routes.InitEmptyItems(testKeyboards(), model.Numeric)

		assert.Equal(t, '1', items[0].Char)
	})

	t.Run("starts with zero counts", func(t *testing.T) {
		items, _, _ := routes.InitEmptyItems(layout.Default(), model.Caps)

		for _, item := range items {
			assert.Zero(t, item.Count)
		}
	})
}
