package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"payrecon/internal/domain"
)

func TestActorOrDefault(t *testing.T) {
	assert.Equal(t, domain.ActorDefaultAdmin, actorOrDefault(""))
	assert.Equal(t, "alice", actorOrDefault("alice"))
}
