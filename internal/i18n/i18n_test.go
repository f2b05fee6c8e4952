package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestPairRendersBothLanguages(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	hi, en := Pair(d, KeyOrderReceivedMessage, "राहुल चाट भंडार", "Rahul Chaat Bhandar", "350")
	assert.Equal(t, "राहुल चाट भंडार से ₹350 का ऑर्डर", hi)
	assert.Equal(t, "Order of ₹350 from Rahul Chaat Bhandar", en)

	hi, en = Pair(d, KeyOrderAcceptedMessage, "ORD001")
	assert.Equal(t, "आपका ऑर्डर #ORD001 स्वीकार किया गया", hi)
	assert.Equal(t, "Your order #ORD001 has been accepted", en)

	hi, en = Pair(d, KeyStockUpdatedMessage, 40)
	assert.Equal(t, "प्रोडक्ट स्टॉक 40 पर अपडेट किया गया", hi)
	assert.Equal(t, "Product stock updated to 40", en)
}

func TestEveryKeyHasBothLanguages(t *testing.T) {
	d := MustNew()
	for key, e := range entries {
		assert.NotEqual(t, key, d.Text(language.Hindi, key, "a", "b", "c"), key)
		assert.NotEqual(t, key, d.Text(language.English, key, "a", "b", "c"), key)
		assert.NotEmpty(t, e.hi)
		assert.NotEmpty(t, e.en)
	}
}
