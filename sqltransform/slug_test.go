package sqltransform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boa Viagem", "boa_viagem"},
		{"Graças", "gracas"},
		{"  Poço da Panela ", "poco_da_panela"},
		{"São José / Centro", "sao_jose_centro"},
		{"IPSEP", "ipsep"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
