package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText(`<script>alert(1)</script>hello`))
	assert.Equal(t, "R&D team", SanitizeText("  <b>R&D</b> team "))
	assert.Equal(t, "a < b", SanitizeText("a < b"))

	for _, encoded := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;img src=x onerror=alert(1)&amp;gt;",
		"hi &lt;b onclick=x()&gt;there&lt;/b&gt;",
	} {
		out := SanitizeText(encoded)
		assert.NotContains(t, out, "<script", encoded)
		assert.NotContains(t, out, "<img", encoded)
		assert.NotContains(t, out, "<b", encoded)
		assert.Equal(t, out, SanitizeText(out), "result must be stable: %s", encoded)
	}
	assert.Equal(t, "hi there", SanitizeText("hi &lt;b onclick=x()&gt;there&lt;/b&gt;"))
}

func TestSanitizeRichText(t *testing.T) {
	out := SanitizeRichText(`<p onclick="x()">Build <strong>APIs</strong></p><iframe src="x"></iframe>`)
	assert.Equal(t, "<p>Build <strong>APIs</strong></p>", out)
}

func TestSanitizeList(t *testing.T) {
	assert.Equal(t, []string{"Go", "PostgreSQL"}, SanitizeList([]string{"Go", " go ", "", "<i>PostgreSQL</i>"}))
}

func TestIsValidConfigKey(t *testing.T) {
	assert.True(t, IsValidConfigKey("max_applications_per_day"))
	assert.True(t, IsValidConfigKey("mail.from"))
	assert.False(t, IsValidConfigKey("Max-Apps"))
	assert.False(t, IsValidConfigKey(""))
}

func TestStringValidation(t *testing.T) {
	assert.True(t, NewStringValidation("Jane").WithMinLength(2).WithMaxLength(10).Validate())
	assert.False(t, NewStringValidation("").Validate())
	assert.True(t, NewStringValidation("").WithRequired(false).Validate())
	assert.False(t, NewStringValidation("EURO").WithPattern(CompiledPatterns.Currency).Validate())
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := json.RawMessage(`{"type":"integer","minimum":1}`)

	require.NoError(t, ValidateJSONAgainstSchema(json.RawMessage(`5`), schema))
	require.NoError(t, ValidateJSONAgainstSchema(json.RawMessage(`"anything"`), nil))

	err := ValidateJSONAgainstSchema(json.RawMessage(`0`), schema)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.NotEmpty(t, schemaErr.Violations)

	assert.Error(t, ValidateJSONAgainstSchema(json.RawMessage(`{bad`), schema))
	assert.Error(t, ValidateJSONSchema(json.RawMessage(`{"type": 12}`)))
}
