package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Page
		found bool
	}{
		{name: "identifier", input: "Budget", want: Budget, found: true},
		{name: "identifier lower case", input: "notes", want: Notes, found: true},
		{name: "display name", input: "Meu Espaço", want: MySpace, found: true},
		{name: "display name other case", input: "planejamento", want: Planning, found: true},
		{name: "unknown falls back to default", input: "Garage", want: Default, found: false},
		{name: "empty falls back to default", input: "  ", want: Default, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Parse(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Orçamentos", Budget.DisplayName())
	assert.Equal(t, "Attic", Page("Attic").DisplayName())
	assert.False(t, Page("Attic").Known())
}

func TestCurrent(t *testing.T) {
	t.Run("should return page stored in context", func(t *testing.T) {
		p, err := Current(WithPage(context.Background(), Events))
		assert.NoError(t, err)
		assert.Equal(t, Events, p)
	})
	t.Run("should report missing page", func(t *testing.T) {
		p, err := Current(context.Background())
		assert.ErrorIs(t, err, ErrNoPage)
		assert.Equal(t, Default, p)
	})
}
