package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingReviewService.Error(), ErrInvalidPorts.Error())
}

func TestErrMissingReviewService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingReviewService.Error(), "review service")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
