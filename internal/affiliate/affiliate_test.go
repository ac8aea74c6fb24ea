package affiliate

import (
	"context"
	"testing"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateGenerator(t *testing.T) {
	g, err := NewTemplateGenerator("https://partner.example.com/go?tag=reg-20")
	require.NoError(t, err)

	link, err := g.Generate(context.Background(), models.Candidate{Name: "Desk Lamp & Shade"})
	require.NoError(t, err)
	assert.Equal(t, "https://partner.example.com/go?product=Desk+Lamp+%26+Shade&tag=reg-20", link)

	_, err = g.Generate(context.Background(), models.Candidate{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	g, err := New("")
	require.NoError(t, err)
	assert.IsType(t, NopGenerator{}, g)

	link, err := g.Generate(context.Background(), models.Candidate{Name: "Kite"})
	require.NoError(t, err)
	assert.Empty(t, link)

	_, err = New("ftp://partner.example.com")
	assert.Error(t, err)

	g, err = New("https://partner.example.com/")
	require.NoError(t, err)
	assert.IsType(t, &TemplateGenerator{}, g)
}
