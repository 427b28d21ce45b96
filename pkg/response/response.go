// Package response writes the {data, error, meta} envelope every endpoint of
// the grades API returns. Course data is per-user, so nothing is cacheable by
// intermediaries.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// Envelope is the JSON body shape. Meta carries cache_hit and
// processing_time_ms when the handler recorded them.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

func private(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes data with an optional meta map; a nil or empty meta is omitted.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	private(c)
	body := Envelope{Data: data}
	if len(meta) > 0 && len(meta[0]) > 0 {
		body.Meta = meta[0]
	}
	c.JSON(status, body)
}

// Created is used for imports, new courses, units, evaluations and semesters.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error maps err onto its appErrors status. Untyped errors become a 500
// without leaking their text.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	private(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent flushes a bare 204 so the status is committed even when no body
// write follows.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}
