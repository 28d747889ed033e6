package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"auction-house/internal/api/respond"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// body, nested values included. Form and multipart bodies pass untouched.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		mt, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if mt != "application/json" || c.Request.Body == nil {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, "Invalid body")
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body interface{}
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			respond.Fail(c, http.StatusBadRequest, "Malformed JSON")
			return
		}

		newBody, err := marshalJSON(clean(policy, body))
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, "Malformed JSON")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

var marshalJSON = json.Marshal

// textEntities undoes only what the strict policy escapes in plain text.
// &lt; and &gt; stay encoded so entity-encoded markup never turns back into tags.
var textEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// clean sanitises strings in v.
func clean(p *bluemonday.Policy, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return textEntities.Replace(p.Sanitize(t))
	case map[string]interface{}:
		for k, vv := range t {
			t[k] = clean(p, vv)
		}
		return t
	case []interface{}:
		for i, vv := range t {
			t[i] = clean(p, vv)
		}
		return t
	}
	return v
}
