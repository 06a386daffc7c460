package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDesignation(t *testing.T) {
	tests := []struct {
		points      float64
		designation string
		discount    float64
	}{
		{0, "Bronze", 0},
		{99.9, "Bronze", 0},
		{100, "Silver", 5},
		{499, "Silver", 5},
		{500, "Gold", 10},
		{1499.5, "Gold", 10},
		{1500, "Platinum", 15},
		{2999, "Platinum", 15},
		{3000, "Diamond", 20},
		{100000, "Diamond", 20},
	}
	for _, tt := range tests {
		designation, discount := CalculateDesignation(tt.points)
		assert.Equal(t, tt.designation, designation, "points=%v", tt.points)
		assert.Equal(t, tt.discount, discount, "points=%v", tt.points)
	}
}
