package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeZIP(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"2108", "02108"},
		{"02108", "02108"},
		{"108", "00108"},
		{" 2108 ", "02108"},
		{"", "00000"},
		{"021081234", "021081234"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeZIP(tt.in))
		})
	}
}

func TestDomainScores_GetSetAvailable(t *testing.T) {
	var s DomainScores
	assert.Equal(t, 0, s.Available())

	v := 7.5
	s.Set(DomainCrime, &v)
	s.Set(DomainLifestyle, &v)

	assert.Equal(t, 2, s.Available())
	assert.Equal(t, &v, s.Get(DomainCrime))
	assert.Nil(t, s.Get(DomainHousing))
}

func TestDomains_CanonicalOrderIsStable(t *testing.T) {
	assert.Equal(t, []Domain{
		DomainCrime, DomainSchools, DomainTransit, DomainHousing,
		DomainDiversity, DomainHealthcare, DomainLifestyle,
	}, Domains())
}
