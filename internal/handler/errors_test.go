package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"payrecon/internal/domain"
)

func TestStatusForKind(t *testing.T) {
	cases := map[domain.ErrorKind]int{
		domain.KindBadRequest:     http.StatusBadRequest,
		domain.KindInvalidState:   http.StatusBadRequest,
		domain.KindParseError:     http.StatusBadRequest,
		domain.KindNotFound:       http.StatusNotFound,
		domain.KindTransientStore: http.StatusInternalServerError,
		domain.KindTransientQueue: http.StatusInternalServerError,
		domain.KindMirrorError:    http.StatusInternalServerError,
		domain.KindInternal:       http.StatusInternalServerError,
	}

	for kind, want := range cases {
		assert.Equal(t, want, statusForKind(kind), "kind=%s", kind)
	}
}

func TestStatusForKind_UnknownDefaultsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusForKind(domain.ErrorKind("something_new")))
}
