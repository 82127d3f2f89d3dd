package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelic returns middleware that wraps each request in a New Relic
// transaction and forwards handler errors to it.
func NewRelic(app *newrelic.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app == nil {
			c.Next()
			return
		}

		txn := app.StartTransaction(c.Request.Method + " " + c.FullPath())
		defer txn.End()

		txn.SetWebRequestHTTP(c.Request)
		c.Request = c.Request.WithContext(newrelic.NewContext(c.Request.Context(), txn))

		writer := txn.SetWebResponse(c.Writer)
		c.Writer = &txnWriter{ResponseWriter: c.Writer, writer: writer}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}

// txnWriter mirrors status codes into the New Relic response writer.
type txnWriter struct {
	gin.ResponseWriter
	writer interface{ WriteHeader(int) }
}

func (w *txnWriter) WriteHeader(code int) {
	w.writer.WriteHeader(code)
	w.ResponseWriter.WriteHeader(code)
}
