package translate

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestService(validationMin int) *Service {
	log := logrus.New().WithField("test", true)
	return NewService("http://unused.invalid", "key", []string{"free-model"}, []string{"premium-model"}, validationMin, 0, log)
}

func TestValidatesAcceptsShortStrings(t *testing.T) {
	s := newTestService(8)
	assert.True(t, s.validates("hi", "en"))
}

func TestValidatesRejectsUntranslatedPassthrough(t *testing.T) {
	s := newTestService(8)
	source := "This government policy is about what has been done and how it affects the economy"
	assert.False(t, s.validates(source, "en"))
}

func TestValidatesAcceptsGenuineTranslation(t *testing.T) {
	s := newTestService(8)
	translated := "Esta politica do governo brasileiro sobre o Brasil e uma das mais importantes para fazer"
	assert.True(t, s.validates(translated, "en"))
}
