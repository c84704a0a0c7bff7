package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsNoiseAndPunctuation(t *testing.T) {
	got := Normalize("CHK DEP Smith, John #1234")
	assert.Equal(t, "SMITH JOHN 1234", got)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalize_AllNoise(t *testing.T) {
	assert.Equal(t, "", Normalize("payment transfer from the"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"CHK DEP SMITH JOHN",
		"  Acme   Corporation!!  ",
		"ONLINE PMT REF 99812",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize should be idempotent for %q", in)
	}
}
