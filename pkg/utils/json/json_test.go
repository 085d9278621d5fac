package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedAnswer struct {
	Text        string   `json:"text"`
	TextEN      string   `json:"answer_en,omitempty"`
	Source      string   `json:"source"`
	Departments []string `json:"departments,omitempty"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := cachedAnswer{
		Text:        "سعر الصرف يُنشر يومياً",
		TextEN:      "The exchange rate is published daily",
		Source:      "rag",
		Departments: []string{"Finance", "Legal & Compliance"},
	}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out cachedAnswer
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshalOmitsEmptyFields(t *testing.T) {
	data, err := Marshal(cachedAnswer{Text: "hello", Source: "template"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "answer_en")
	assert.NotContains(t, string(data), "departments")
}

func TestUnmarshalInvalidInput(t *testing.T) {
	var out cachedAnswer
	assert.Error(t, Unmarshal([]byte("{not json"), &out))
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(map[string]int{"chunks": 12}))

	var decoded map[string]int
	require.NoError(t, NewDecoder(strings.NewReader(buf.String())).Decode(&decoded))
	assert.Equal(t, 12, decoded["chunks"])
}
